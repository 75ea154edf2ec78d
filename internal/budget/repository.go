package budget

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates budget persistence. Mutations run inside WithTx.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBudget(ctx context.Context, id int64) (Budget, error)
	ListByYear(ctx context.Context, year int) ([]Budget, error)
	ApprovedForYear(ctx context.Context, year int) (Budget, error)
}

// TxRepository exposes methods available within one atomic unit.
type TxRepository interface {
	InsertBudget(ctx context.Context, b Budget) (Budget, error)
	InsertLine(ctx context.Context, line BudgetLine) (BudgetLine, error)
	GetBudget(ctx context.Context, id int64) (Budget, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	SetApproval(ctx context.Context, id, actorID int64, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const budgetColumns = `id, name, budget_year, start_date, end_date, status, currency, parent_budget_id,
revision_number, reason, created_by, approved_by, approved_at, created_at, updated_at`

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanBudget(row pgx.Row) (Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.Name, &b.BudgetYear, &b.StartDate, &b.EndDate, &b.Status, &b.Currency,
		&b.ParentBudgetID, &b.RevisionNumber, &b.Reason, &b.CreatedBy, &b.ApprovedBy, &b.ApprovedAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, ErrBudgetNotFound
		}
		return Budget{}, err
	}
	return b, nil
}

func getBudget(ctx context.Context, q rowQuerier, id int64) (Budget, error) {
	b, err := scanBudget(q.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id=$1`, id))
	if err != nil {
		return Budget{}, err
	}
	b.Lines, err = queryLines(ctx, q, `WHERE l.budget_id=$1`, id)
	if err != nil {
		return Budget{}, err
	}
	return b, nil
}

func queryLines(ctx context.Context, q rowQuerier, where string, args ...any) ([]BudgetLine, error) {
	rows, err := q.Query(ctx, `SELECT l.id, l.budget_id, l.account_id, l.category, l.subcategory,
l.cost_center_id, l.department,
l.jan, l.feb, l.mar, l.apr, l.may, l.jun, l.jul, l.aug, l.sep, l.oct, l.nov, l.dec,
l.total_budget, l.created_at, l.updated_at, a.code, a.name, a.type
FROM budget_lines l JOIN accounts a ON a.id = l.account_id `+where+` ORDER BY a.code`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BudgetLine
	for rows.Next() {
		var l BudgetLine
		m := &l.Monthly
		if err := rows.Scan(&l.ID, &l.BudgetID, &l.AccountID, &l.Category, &l.Subcategory,
			&l.CostCenterID, &l.Department,
			&m.January, &m.February, &m.March, &m.April, &m.May, &m.June,
			&m.July, &m.August, &m.September, &m.October, &m.November, &m.December,
			&l.TotalBudget, &l.CreatedAt, &l.UpdatedAt, &l.AccountCode, &l.AccountName, &l.AccountType); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) GetBudget(ctx context.Context, id int64) (Budget, error) {
	return getBudget(ctx, r.db, id)
}

func (r *repository) ListByYear(ctx context.Context, year int) ([]Budget, error) {
	rows, err := r.db.Query(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE budget_year=$1 ORDER BY revision_number, id`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ApprovedForYear returns the current approved budget for a year, highest
// revision first.
func (r *repository) ApprovedForYear(ctx context.Context, year int) (Budget, error) {
	b, err := scanBudget(r.db.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets
WHERE budget_year=$1 AND status=$2 ORDER BY revision_number DESC, id DESC LIMIT 1`, year, StatusApproved))
	if err != nil {
		return Budget{}, err
	}
	b.Lines, err = queryLines(ctx, r.db, `WHERE l.budget_id=$1`, b.ID)
	if err != nil {
		return Budget{}, err
	}
	return b, nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertBudget(ctx context.Context, b Budget) (Budget, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO budgets
(name, budget_year, start_date, end_date, status, currency, parent_budget_id, revision_number, reason, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at, updated_at`,
		b.Name, b.BudgetYear, b.StartDate, b.EndDate, b.Status, b.Currency,
		b.ParentBudgetID, b.RevisionNumber, b.Reason, b.CreatedBy)
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return Budget{}, err
	}
	return b, nil
}

func (r *txRepository) InsertLine(ctx context.Context, line BudgetLine) (BudgetLine, error) {
	m := line.Monthly
	row := r.tx.QueryRow(ctx, `INSERT INTO budget_lines
(budget_id, account_id, category, subcategory, cost_center_id, department,
jan, feb, mar, apr, may, jun, jul, aug, sep, oct, nov, dec, total_budget)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
RETURNING id, created_at, updated_at`,
		line.BudgetID, line.AccountID, line.Category, line.Subcategory, line.CostCenterID, line.Department,
		m.January, m.February, m.March, m.April, m.May, m.June,
		m.July, m.August, m.September, m.October, m.November, m.December, line.TotalBudget)
	if err := row.Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return BudgetLine{}, ErrDuplicateLine
		}
		return BudgetLine{}, err
	}
	return line, nil
}

func (r *txRepository) GetBudget(ctx context.Context, id int64) (Budget, error) {
	return getBudget(ctx, r.tx, id)
}

func (r *txRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.tx.Exec(ctx, `UPDATE budgets SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

func (r *txRepository) SetApproval(ctx context.Context, id, actorID int64, at time.Time) error {
	tag, err := r.tx.Exec(ctx, `UPDATE budgets SET status=$2, approved_by=$3, approved_at=$4, updated_at=NOW() WHERE id=$1`,
		id, StatusApproved, actorID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}
