package forecast

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRepository reads open receivables from the invoices table.
type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// OpenInvoices returns invoices issued on or before asOf that have not
// been paid.
func (r *InvoiceRepository) OpenInvoices(ctx context.Context, asOf time.Time) ([]OpenInvoice, error) {
	rows, err := r.db.Query(ctx, `SELECT id, total, due_date FROM invoices
WHERE paid_at IS NULL AND issued_at <= $1 ORDER BY due_date`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OpenInvoice
	for rows.Next() {
		var inv OpenInvoice
		if err := rows.Scan(&inv.ID, &inv.Total, &inv.DueDate); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
