// Package tax resolves tax rates and computes tax amounts for journal
// entry tax lines.
package tax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrUnknownTaxCode occurs when a tax code has no registered rate.
var ErrUnknownTaxCode = errors.New("tax: unknown tax code")

// RateSource resolves a tax code to its rate.
type RateSource interface {
	Rate(ctx context.Context, code string) (float64, error)
}

// Repository reads tax rates from the tax_codes table.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Rate(ctx context.Context, code string) (float64, error) {
	var rate float64
	err := r.db.QueryRow(ctx, `SELECT rate FROM tax_codes WHERE code=$1 AND is_active`, code).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTaxCode, code)
	}
	if err != nil {
		return 0, err
	}
	return rate, nil
}

// StaticRates is an in-memory RateSource keyed by tax code.
type StaticRates map[string]float64

func (s StaticRates) Rate(_ context.Context, code string) (float64, error) {
	rate, ok := s[strings.ToUpper(code)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTaxCode, code)
	}
	return rate, nil
}

// Service computes tax amounts from a rate source.
type Service struct {
	rates RateSource
}

func NewService(rates RateSource) *Service {
	return &Service{rates: rates}
}

// TaxRate returns the rate for a code.
func (s *Service) TaxRate(ctx context.Context, taxCode string) (float64, error) {
	return s.rates.Rate(ctx, taxCode)
}

// CalculateTax computes the tax amount on a taxable base, rounded to two
// decimals.
func (s *Service) CalculateTax(ctx context.Context, taxableAmount float64, taxCode string) (float64, error) {
	rate, err := s.rates.Rate(ctx, taxCode)
	if err != nil {
		return 0, err
	}
	amount := decimal.NewFromFloat(taxableAmount).Mul(decimal.NewFromFloat(rate)).Round(2)
	return amount.InexactFloat64(), nil
}
