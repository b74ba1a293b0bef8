package payments

import (
	"github.com/rahulmehra-dev/GigLedger/internal/pkg/env"
	"github.com/shopspring/decimal"
)

const defaultFeeRate = "0.10"

// FeeSplit is the result of splitting a gross payment amount between the
// platform and the freelancer. PlatformFee + NetAmount always equals the
// gross amount exactly.
type FeeSplit struct {
	PlatformFee decimal.Decimal
	NetAmount   decimal.Decimal
}

// FeeCalculator computes the platform fee share of a gross payment.
type FeeCalculator struct {
	Rate decimal.Decimal
}

// NewFeeCalculator creates a calculator with an explicit fee rate (e.g. 0.10).
func NewFeeCalculator(rate decimal.Decimal) FeeCalculator {
	return FeeCalculator{Rate: rate}
}

// NewFeeCalculatorFromEnv reads PLATFORM_FEE_RATE, falling back to the 10%
// default when unset or unparsable.
func NewFeeCalculatorFromEnv() FeeCalculator {
	raw := env.GetEnv("PLATFORM_FEE_RATE", defaultFeeRate)
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		rate, _ = decimal.NewFromString(defaultFeeRate)
	}
	return FeeCalculator{Rate: rate}
}

// Split divides a gross amount into platform fee and freelancer net. The fee
// is rounded half-up to the currency minor unit; the net is the exact
// remainder so the two sides always sum back to the gross amount.
func (f FeeCalculator) Split(gross decimal.Decimal) FeeSplit {
	fee := gross.Mul(f.Rate).Round(2)
	return FeeSplit{
		PlatformFee: fee,
		NetAmount:   gross.Sub(fee),
	}
}
