// Package commission turns sale prices and rate settings into rounded monetary
// amounts. All arithmetic goes through decimal so that rounding to cents is
// exact and half-away-from-zero.
package commission

import (
	"github.com/shopspring/decimal"

	"github.com/denisok6893-rgb/agent-commission-reports/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percent returns amount * rate / 100 rounded to cents.
func Percent(amount, rate float64) float64 {
	return percent(amount, rate).InexactFloat64()
}

func percent(amount, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Div(hundred).Round(2)
}

// Referral is the commission earned by a single referral on a sale of the given price.
func Referral(price float64, external bool, rates domain.RateSettings) float64 {
	rate := rates.ReferralInternal
	if external {
		rate = rates.ReferralExternal
	}
	return Percent(price, rate)
}

// Sum adds already-rounded amounts without float drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

// Tally accumulates one referral aggregation path. Each referral row counts once
// and contributes its own rounded commission.
type Tally struct {
	Count  int
	amount decimal.Decimal
}

func (t *Tally) Add(price float64, external bool, rates domain.RateSettings) {
	rate := rates.ReferralInternal
	if external {
		rate = rates.ReferralExternal
	}
	t.Count++
	t.amount = t.amount.Add(percent(price, rate))
}

func (t Tally) Amount() float64 {
	return t.amount.Round(2).InexactFloat64()
}
