package fx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertBaseCurrencyIdentity(t *testing.T) {
	c := NewConverter("USD", StaticRates{"EUR": 1.1})

	amount, rate, err := c.Convert(context.Background(), 250.5, "USD")
	require.NoError(t, err)
	require.Equal(t, 250.5, amount)
	require.Equal(t, 1.0, rate)

	// Empty currency is treated as base.
	amount, rate, err = c.Convert(context.Background(), 99.99, "")
	require.NoError(t, err)
	require.Equal(t, 99.99, amount)
	require.Equal(t, 1.0, rate)
}

func TestConvertKnownRateRounds(t *testing.T) {
	c := NewConverter("USD", StaticRates{"EUR": 1.095})

	amount, rate, err := c.Convert(context.Background(), 100.10, "EUR")
	require.NoError(t, err)
	require.Equal(t, 1.095, rate)
	require.Equal(t, 109.61, amount)
}

func TestConvertUnknownCurrencyFallsBack(t *testing.T) {
	c := NewConverter("USD", StaticRates{})

	amount, rate, err := c.Convert(context.Background(), 500.0, "JPY")
	require.NoError(t, err)
	require.Equal(t, 1.0, rate)
	require.Equal(t, 500.0, amount)
}

func TestConvertNilRateSource(t *testing.T) {
	c := NewConverter("USD", nil)

	amount, rate, err := c.Convert(context.Background(), 42.0, "EUR")
	require.NoError(t, err)
	require.Equal(t, 1.0, rate)
	require.Equal(t, 42.0, amount)
}

func TestConverterNormalisesBase(t *testing.T) {
	c := NewConverter("  ", nil)
	require.Equal(t, DefaultBaseCurrency, c.BaseCurrency())

	c = NewConverter("idr", nil)
	require.Equal(t, "IDR", c.BaseCurrency())
}

func TestConvertLowercaseCurrency(t *testing.T) {
	c := NewConverter("USD", StaticRates{"EUR": 2})

	amount, rate, err := c.Convert(context.Background(), 10, "eur")
	require.NoError(t, err)
	require.Equal(t, 2.0, rate)
	require.Equal(t, 20.0, amount)
}
