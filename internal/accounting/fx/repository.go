package fx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RateRepository reads exchange rates from the currency_rates table.
// It keeps the most recent effective rate per currency.
type RateRepository struct {
	db *pgxpool.Pool
}

func NewRateRepository(db *pgxpool.Pool) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) RateToBase(ctx context.Context, currency string) (decimal.Decimal, bool, error) {
	var rate decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT rate_to_base FROM currency_rates
WHERE currency=$1 ORDER BY effective_date DESC LIMIT 1`, currency).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, err
	}
	return rate, true, nil
}

// UpsertRate records a rate for a currency effective on the given date.
func (r *RateRepository) UpsertRate(ctx context.Context, currency string, rate decimal.Decimal, effectiveDate string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO currency_rates (currency, rate_to_base, effective_date)
VALUES ($1,$2,$3)
ON CONFLICT (currency, effective_date) DO UPDATE SET rate_to_base=EXCLUDED.rate_to_base`, currency, rate, effectiveDate)
	return err
}
