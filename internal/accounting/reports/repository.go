package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// ReadModel reads aggregated ledger state. Implementations must present a
// consistent snapshot: a transaction is visible with all of its entries or
// not at all.
type ReadModel interface {
	AccountActivity(ctx context.Context, start, end time.Time) ([]AccountActivity, error)
	MonthlyActivity(ctx context.Context, year int) ([]AccountMonthlyActivity, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) ReadModel {
	return &repository{db: db}
}

// accountActivityQuery aggregates entry movement per account over a date
// window. The date bounds restrict the entry rows being summed; putting
// them on an outer join of transactions instead would keep out-of-period
// entries alive as null-transaction rows and inflate the totals.
const accountActivityQuery = `SELECT a.id, a.code, a.name, a.name_local, a.type, a.subtype, a.currency, a.is_active,
a.created_at, a.updated_at, COALESCE(m.debit,0), COALESCE(m.credit,0)
FROM accounts a
LEFT JOIN (
	SELECT e.account_id, SUM(e.debit) AS debit, SUM(e.credit) AS credit
	FROM transaction_entries e
	JOIN transactions t ON t.id = e.transaction_id
	WHERE t.date >= $1 AND t.date <= $2
	GROUP BY e.account_id
) m ON m.account_id = a.id
ORDER BY a.code`

func (r *repository) AccountActivity(ctx context.Context, start, end time.Time) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, accountActivityQuery, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var act AccountActivity
		a := &act.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.NameLocal, &a.Type, &a.Subtype, &a.Currency, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt, &act.Debit, &act.Credit); err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, rows.Err()
}

func (r *repository) MonthlyActivity(ctx context.Context, year int) ([]AccountMonthlyActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.code, a.name, a.name_local, a.type, a.subtype, a.currency, a.is_active,
a.created_at, a.updated_at, EXTRACT(MONTH FROM t.date)::int AS month,
COALESCE(SUM(e.debit),0), COALESCE(SUM(e.credit),0)
FROM accounts a
JOIN transaction_entries e ON e.account_id = a.id
JOIN transactions t ON t.id = e.transaction_id
WHERE EXTRACT(YEAR FROM t.date)::int = $1
GROUP BY a.id, month ORDER BY a.code, month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	index := make(map[int64]int)
	var out []AccountMonthlyActivity
	for rows.Next() {
		var a accounts.Account
		var month int
		var debit, credit float64
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.NameLocal, &a.Type, &a.Subtype, &a.Currency, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt, &month, &debit, &credit); err != nil {
			return nil, err
		}
		pos, ok := index[a.ID]
		if !ok {
			out = append(out, AccountMonthlyActivity{Account: a})
			pos = len(out) - 1
			index[a.ID] = pos
		}
		if month >= 1 && month <= 12 {
			out[pos].Months[month-1] = DirectedBalance(a.Type, debit, credit)
		}
	}
	return out, rows.Err()
}
