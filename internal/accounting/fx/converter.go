// Package fx converts entry amounts into the ledger base currency.
package fx

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultBaseCurrency is used when no base currency is configured.
const DefaultBaseCurrency = "USD"

// RateSource resolves an exchange rate from a currency into the base currency.
// The boolean reports whether the rate was known.
type RateSource interface {
	RateToBase(ctx context.Context, currency string) (decimal.Decimal, bool, error)
}

// Converter applies exchange rates against the configured base currency.
// Unknown currencies fall back to rate 1.0; that is a deliberate policy, not
// an error, so postings in unregistered currencies are stored as entered.
type Converter struct {
	base  string
	rates RateSource
}

func NewConverter(base string, rates RateSource) *Converter {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseCurrency
	}
	return &Converter{base: strings.ToUpper(base), rates: rates}
}

// BaseCurrency returns the currency all ledger amounts are stored in.
func (c *Converter) BaseCurrency() string {
	return c.base
}

// Rate resolves the exchange rate for the given currency.
func (c *Converter) Rate(ctx context.Context, currency string) (float64, error) {
	rate, err := c.rate(ctx, currency)
	if err != nil {
		return 0, err
	}
	return rate.InexactFloat64(), nil
}

// Convert translates an amount into base currency, returning the converted
// amount rounded to two decimals and the rate applied.
func (c *Converter) Convert(ctx context.Context, amount float64, currency string) (float64, float64, error) {
	rate, err := c.rate(ctx, currency)
	if err != nil {
		return 0, 0, err
	}
	converted := decimal.NewFromFloat(amount).Mul(rate).Round(2)
	return converted.InexactFloat64(), rate.InexactFloat64(), nil
}

func (c *Converter) rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == c.base {
		return decimal.NewFromInt(1), nil
	}
	if c.rates == nil {
		return decimal.NewFromInt(1), nil
	}
	rate, ok, err := c.rates.RateToBase(ctx, currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !ok || rate.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	return rate, nil
}

// StaticRates is an in-memory RateSource keyed by currency code.
type StaticRates map[string]float64

func (s StaticRates) RateToBase(_ context.Context, currency string) (decimal.Decimal, bool, error) {
	rate, ok := s[strings.ToUpper(currency)]
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	return decimal.NewFromFloat(rate), true, nil
}
