package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// Repository encapsulates ledger persistence. Mutations run inside WithTx;
// everything else is a snapshot read.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetTransactionWithEntries(ctx context.Context, id int64) (Transaction, []TransactionEntry, error)
	EntriesForAccount(ctx context.Context, accountID int64, upTo time.Time) ([]TransactionEntry, error)
	AccountStatement(ctx context.Context, accountID int64, upTo time.Time) ([]StatementLine, error)
	ListBalances(ctx context.Context) ([]AccountBalance, error)
}

// TxRepository exposes methods available within one atomic unit.
type TxRepository interface {
	GetAccounts(ctx context.Context, ids []int64) (map[int64]accounts.Account, error)
	InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error)
	InsertEntries(ctx context.Context, transactionID int64, entries []TransactionEntry) error
	GetEntries(ctx context.Context, transactionID int64) ([]TransactionEntry, error)
	RecomputeBalance(ctx context.Context, accountID int64) error
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

const transactionColumns = `id, reference_number, description, description_local, date, type, source_type, source_id,
total_amount, currency, exchange_rate, cost_center_id, tags, approval_status, created_by, approved_by, approved_at,
created_at, updated_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.ReferenceNumber, &t.Description, &t.DescriptionLocal, &t.Date, &t.Type,
		&t.SourceType, &t.SourceID, &t.TotalAmount, &t.Currency, &t.ExchangeRate, &t.CostCenterID, &t.Tags,
		&t.ApprovalStatus, &t.CreatedBy, &t.ApprovedBy, &t.ApprovedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

func (r *repository) GetTransactionWithEntries(ctx context.Context, id int64) (Transaction, []TransactionEntry, error) {
	txn, err := scanTransaction(r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id=$1`, id))
	if err != nil {
		return Transaction{}, nil, err
	}
	entries, err := queryEntries(ctx, r.db, `SELECT `+entryColumns+` FROM transaction_entries WHERE transaction_id=$1 ORDER BY id`, id)
	if err != nil {
		return Transaction{}, nil, err
	}
	return txn, entries, nil
}

func (r *repository) EntriesForAccount(ctx context.Context, accountID int64, upTo time.Time) ([]TransactionEntry, error) {
	return queryEntries(ctx, r.db, `SELECT `+entryColumnsPrefixed+` FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE e.account_id=$1 AND t.date <= $2 ORDER BY t.date, e.id`, accountID, upTo)
}

func (r *repository) AccountStatement(ctx context.Context, accountID int64, upTo time.Time) ([]StatementLine, error) {
	rows, err := r.db.Query(ctx, `SELECT e.transaction_id, e.id, t.reference_number, t.date, e.debit, e.credit, e.description
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE e.account_id=$1 AND t.date <= $2 ORDER BY t.date, e.id`, accountID, upTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatementLine
	for rows.Next() {
		var l StatementLine
		if err := rows.Scan(&l.TransactionID, &l.EntryID, &l.ReferenceNumber, &l.Date, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) ListBalances(ctx context.Context) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT account_id, debit, credit, updated_at FROM account_balances ORDER BY account_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Debit, &b.Credit, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const entryColumns = `id, transaction_id, account_id, debit, credit, original_debit, original_credit, currency, exchange_rate, description, metadata, created_at`
const entryColumnsPrefixed = `e.id, e.transaction_id, e.account_id, e.debit, e.credit, e.original_debit, e.original_credit, e.currency, e.exchange_rate, e.description, e.metadata, e.created_at`

func queryEntries(ctx context.Context, q querier, sql string, args ...any) ([]TransactionEntry, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TransactionEntry
	for rows.Next() {
		var e TransactionEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Debit, &e.Credit, &e.OriginalDebit,
			&e.OriginalCredit, &e.Currency, &e.ExchangeRate, &e.Description, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccounts(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, code, name, name_local, type, subtype, currency, is_active, created_at, updated_at
FROM accounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]accounts.Account, len(ids))
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.NameLocal, &a.Type, &a.Subtype, &a.Currency, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions
(reference_number, description, description_local, date, type, source_type, source_id, total_amount, currency,
exchange_rate, cost_center_id, tags, approval_status, created_by, approved_by, approved_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
RETURNING id, created_at, updated_at`,
		txn.ReferenceNumber, txn.Description, txn.DescriptionLocal, txn.Date, txn.Type, txn.SourceType, txn.SourceID,
		txn.TotalAmount, txn.Currency, txn.ExchangeRate, txn.CostCenterID, txn.Tags, txn.ApprovalStatus,
		txn.CreatedBy, txn.ApprovedBy, txn.ApprovedAt)
	if err := row.Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Transaction{}, ErrDuplicateReference
		}
		return Transaction{}, err
	}
	return txn, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, transactionID int64, entries []TransactionEntry) error {
	for _, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		if _, err := r.tx.Exec(ctx, `INSERT INTO transaction_entries
(transaction_id, account_id, debit, credit, original_debit, original_credit, currency, exchange_rate, description, metadata)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			transactionID, e.AccountID, e.Debit, e.Credit, e.OriginalDebit, e.OriginalCredit, e.Currency,
			e.ExchangeRate, e.Description, meta); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntries(ctx context.Context, transactionID int64) ([]TransactionEntry, error) {
	return queryEntries(ctx, r.tx, `SELECT `+entryColumns+` FROM transaction_entries WHERE transaction_id=$1 ORDER BY id`, transactionID)
}

// RecomputeBalance rebuilds the cached account projection from entry history
// within the same atomic unit as the entries that changed it.
func (r *txRepository) RecomputeBalance(ctx context.Context, accountID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO account_balances (account_id, debit, credit, updated_at)
SELECT $1, COALESCE(SUM(debit),0), COALESCE(SUM(credit),0), NOW()
FROM transaction_entries WHERE account_id=$1
ON CONFLICT (account_id) DO UPDATE SET debit=EXCLUDED.debit, credit=EXCLUDED.credit, updated_at=EXCLUDED.updated_at`, accountID)
	return err
}
