package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestFeeSplitTenPercent(t *testing.T) {
	calc := NewFeeCalculator(mustDecimal(t, "0.10"))

	split := calc.Split(mustDecimal(t, "200.00"))

	assert.Equal(t, "20.00", split.PlatformFee.StringFixed(2))
	assert.Equal(t, "180.00", split.NetAmount.StringFixed(2))
}

func TestFeeSplitRoundsHalfUp(t *testing.T) {
	calc := NewFeeCalculator(mustDecimal(t, "0.10"))

	// 33.33 * 0.10 = 3.333 -> fee 3.33
	split := calc.Split(mustDecimal(t, "33.33"))
	assert.Equal(t, "3.33", split.PlatformFee.StringFixed(2))
	assert.Equal(t, "30.00", split.NetAmount.StringFixed(2))

	// 33.35 * 0.10 = 3.335 -> half rounds up to 3.34
	split = calc.Split(mustDecimal(t, "33.35"))
	assert.Equal(t, "3.34", split.PlatformFee.StringFixed(2))
	assert.Equal(t, "30.01", split.NetAmount.StringFixed(2))
}

func TestFeeSplitConservation(t *testing.T) {
	calc := NewFeeCalculator(mustDecimal(t, "0.10"))

	for _, gross := range []string{"0.01", "0.05", "1.00", "19.99", "33.33", "99.99", "200.00", "12345.67"} {
		g := mustDecimal(t, gross)
		split := calc.Split(g)

		assert.True(t, split.PlatformFee.Add(split.NetAmount).Equal(g),
			"fee %s + net %s must equal gross %s", split.PlatformFee, split.NetAmount, g)
		assert.False(t, split.NetAmount.IsNegative(), "net must not be negative for gross %s", g)
	}
}

func TestFeeSplitZeroRate(t *testing.T) {
	calc := NewFeeCalculator(decimal.Zero)

	split := calc.Split(mustDecimal(t, "50.00"))
	assert.True(t, split.PlatformFee.IsZero())
	assert.Equal(t, "50.00", split.NetAmount.StringFixed(2))
}

func TestNewFeeCalculatorFromEnvDefaultsAndRejectsBadRates(t *testing.T) {
	t.Setenv("PLATFORM_FEE_RATE", "")
	assert.Equal(t, "0.1", NewFeeCalculatorFromEnv().Rate.String())

	t.Setenv("PLATFORM_FEE_RATE", "0.20")
	assert.Equal(t, "0.2", NewFeeCalculatorFromEnv().Rate.String())

	t.Setenv("PLATFORM_FEE_RATE", "not-a-number")
	assert.Equal(t, "0.1", NewFeeCalculatorFromEnv().Rate.String())

	t.Setenv("PLATFORM_FEE_RATE", "-0.05")
	assert.Equal(t, "0.1", NewFeeCalculatorFromEnv().Rate.String())

	t.Setenv("PLATFORM_FEE_RATE", "1.5")
	assert.Equal(t, "0.1", NewFeeCalculatorFromEnv().Rate.String())
}
