package tax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateTaxRounds(t *testing.T) {
	svc := NewService(StaticRates{"VAT11": 0.11})

	amount, err := svc.CalculateTax(context.Background(), 1234.55, "VAT11")
	require.NoError(t, err)
	require.Equal(t, 135.8, amount)
}

func TestCalculateTaxZeroRate(t *testing.T) {
	svc := NewService(StaticRates{"EXEMPT": 0})

	amount, err := svc.CalculateTax(context.Background(), 999.99, "EXEMPT")
	require.NoError(t, err)
	require.Equal(t, 0.0, amount)
}

func TestUnknownTaxCode(t *testing.T) {
	svc := NewService(StaticRates{})

	_, err := svc.CalculateTax(context.Background(), 100, "GST")
	require.ErrorIs(t, err, ErrUnknownTaxCode)

	_, err = svc.TaxRate(context.Background(), "GST")
	require.ErrorIs(t, err, ErrUnknownTaxCode)
}

func TestStaticRatesCaseInsensitive(t *testing.T) {
	svc := NewService(StaticRates{"VAT11": 0.11})

	rate, err := svc.TaxRate(context.Background(), "vat11")
	require.NoError(t, err)
	require.Equal(t, 0.11, rate)
}
