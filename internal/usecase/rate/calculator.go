package rate

import (
	"fmt"

	"github.com/d1ma11/deposit-service/internal/domain/deposit"

	"github.com/shopspring/decimal"
)

// Rate figures are percent points with two decimals.
var (
	typeAdjustment = map[deposit.Type]decimal.Decimal{
		deposit.TypeRefillWithdraw: decimal.RequireFromString("0.05"),
		deposit.TypeRefillOnly:     decimal.RequireFromString("0.10"),
		deposit.TypeFixed:          decimal.RequireFromString("0.20"),
	}
	durationAdjustment = map[deposit.Duration]decimal.Decimal{
		deposit.Duration3Months: decimal.Zero,
		deposit.Duration6Months: decimal.RequireFromString("0.05"),
		deposit.DurationYear:    decimal.RequireFromString("0.10"),
	}
	capitalizationAdjustment = decimal.RequireFromString("0.01")

	amountBucket      = decimal.NewFromInt(100_000)
	smallAmountBonus  = decimal.RequireFromString("0.25")
	largeAmountBonus  = decimal.RequireFromString("0.40")
	largeAmountBucket = int64(4)
)

const (
	PolicyCompound  = "compound"
	PolicyRecompute = "recompute"
)

// RefillPolicy returns the rate a deposit carries after its amount becomes newAmount.
type RefillPolicy func(d deposit.Deposit, newAmount decimal.Decimal) decimal.Decimal

type Calculator struct {
	base decimal.Decimal
}

func NewCalculator(base decimal.Decimal) *Calculator {
	return &Calculator{base: base}
}

func (c *Calculator) Base() decimal.Decimal { return c.base }

// Calculate returns the rate for t rounded half-up to 2 places.
// Unknown enum values panic; callers validate terms first.
func (c *Calculator) Calculate(t deposit.Terms) decimal.Decimal {
	r := c.base.
		Add(TypeAdjustment(t.Type)).
		Add(DurationAdjustment(t.Duration)).
		Add(AmountAdjustment(t.Amount)).
		Add(CapitalizationAdjustment(t.Capitalized))
	return r.Round(2)
}

func TypeAdjustment(t deposit.Type) decimal.Decimal {
	adj, ok := typeAdjustment[t]
	if !ok {
		panic(fmt.Sprintf("rate: unknown deposit type %q", t))
	}
	return adj
}

func DurationAdjustment(d deposit.Duration) decimal.Decimal {
	adj, ok := durationAdjustment[d]
	if !ok {
		panic(fmt.Sprintf("rate: unknown deposit duration %q", d))
	}
	return adj
}

// AmountAdjustment buckets amount by integer division by 100000: bucket 1
// earns the small bonus, bucket 4 and above the large one, others nothing.
func AmountAdjustment(amount decimal.Decimal) decimal.Decimal {
	q, _ := amount.QuoRem(amountBucket, 0)
	switch b := q.IntPart(); {
	case b == 1:
		return smallAmountBonus
	case b >= largeAmountBucket:
		return largeAmountBonus
	}
	return decimal.Zero
}

func CapitalizationAdjustment(capitalized bool) decimal.Decimal {
	if capitalized {
		return capitalizationAdjustment
	}
	return decimal.Zero
}

// CompoundOnRefill adds the amount adjustment of the new total on top of the
// current rate. Repeated refills keep stacking the bonus.
func (c *Calculator) CompoundOnRefill(d deposit.Deposit, newAmount decimal.Decimal) decimal.Decimal {
	return d.Rate.Add(AmountAdjustment(newAmount)).Round(2)
}

// RecomputeOnRefill prices the deposit from scratch with the new total.
func (c *Calculator) RecomputeOnRefill(d deposit.Deposit, newAmount decimal.Decimal) decimal.Decimal {
	return c.Calculate(TermsOf(d, newAmount))
}

// Policy resolves a configured policy name. Unknown names fall back to compound.
func (c *Calculator) Policy(name string) RefillPolicy {
	if name == PolicyRecompute {
		return c.RecomputeOnRefill
	}
	return c.CompoundOnRefill
}

// TermsOf rebuilds the pricing terms of a stored deposit.
func TermsOf(d deposit.Deposit, amount decimal.Decimal) deposit.Terms {
	t := deposit.Terms{
		Type:        d.Type,
		Duration:    deposit.DurationFromMonths(d.DurationMonths),
		Amount:      amount,
		Capitalized: d.Capitalization,
	}
	if d.PayoutType != nil {
		t.PayoutType = *d.PayoutType
	}
	return t
}
