// Package amortization computes fixed-rate reducing-balance installments.
//
// Amounts are decimal values with two fractional digits. The monthly rate is
// carried at RatePrecision fractional digits, rounded half-up at every step,
// so repeated calls with the same inputs give identical results.
//
// The installment is constant for the whole tenure. The last installment is
// not adjusted for the rounding residue that builds up over long tenures; use
// Residual to measure it.
package amortization

import (
	"github.com/shopspring/decimal"

	"homeloan-backend/internal/domain/apperr"
)

const (
	RatePrecision  int32 = 10
	MoneyPrecision int32 = 2
)

var (
	ErrInvalidPrincipal = apperr.New(apperr.KindValidation, "principal must be greater than zero")
	ErrInvalidTenure    = apperr.New(apperr.KindValidation, "tenure must be at least one month")
	ErrInvalidRate      = apperr.New(apperr.KindValidation, "annual rate must not be negative")

	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// MonthlyRate converts an annual percentage into a monthly fraction:
// rate / 12 / 100, each division rounded half-up to RatePrecision digits.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.
		DivRound(twelve, RatePrecision).
		DivRound(hundred, RatePrecision)
}

// MonthlyInstallment returns the EMI for the given principal, annual rate in
// percent and tenure in months, rounded half-up to two decimals.
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate takes the principal / n branch.
func MonthlyInstallment(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, ErrInvalidPrincipal
	}
	if tenureMonths < 1 {
		return decimal.Zero, ErrInvalidTenure
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	r := MonthlyRate(annualRatePercent)
	if r.IsZero() {
		return principal.DivRound(n, MoneyPrecision), nil
	}

	growth := compound(decimal.NewFromInt(1).Add(r), tenureMonths)
	numerator := principal.Mul(r).Mul(growth)
	denominator := growth.Sub(decimal.NewFromInt(1))
	return numerator.DivRound(denominator, MoneyPrecision), nil
}

// compound returns base^n exactly; n is small (months) so plain repeated
// multiplication keeps every digit.
func compound(base decimal.Decimal, n int) decimal.Decimal {
	out := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		out = out.Mul(base)
	}
	return out
}

// Residual simulates the reducing balance when emi is paid every month and
// returns what is left after the final installment. Monthly interest is
// rounded half-up to cents. A negative value means the schedule overpays.
func Residual(principal, annualRatePercent decimal.Decimal, tenureMonths int, emi decimal.Decimal) decimal.Decimal {
	r := MonthlyRate(annualRatePercent)
	balance := principal
	for i := 0; i < tenureMonths; i++ {
		interest := balance.Mul(r).Round(MoneyPrecision)
		balance = balance.Add(interest).Sub(emi)
	}
	return balance
}

// TotalPayable is emi * tenure.
func TotalPayable(emi decimal.Decimal, tenureMonths int) decimal.Decimal {
	return emi.Mul(decimal.NewFromInt(int64(tenureMonths)))
}
