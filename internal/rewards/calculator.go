// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package rewards

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is one step of a reward schedule: every ClickThreshold clicks
// earn Amount once.
type Tier struct {
	ClickThreshold int64           `json:"click_threshold"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

// TierEarning is one row of the earnings breakdown.
type TierEarning struct {
	TierThreshold int64           `json:"tier_threshold"`
	CountApplied  int64           `json:"count_applied"`
	AmountEarned  decimal.Decimal `json:"amount_earned"`
}

// Earnings is the result of decomposing a click total over a schedule.
// ClicksToNextTier is nil when the schedule is empty, and 0 when every
// configured threshold is already within reach of the remainder.
type Earnings struct {
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	Currency         string          `json:"currency,omitempty"`
	Breakdown        []TierEarning   `json:"breakdown"`
	RemainingClicks  int64           `json:"remaining_clicks"`
	ClicksToNextTier *int64          `json:"clicks_to_next_tier"`
}

// Schedule configuration errors, surfaced to the caller instead of
// being silently coerced.
var (
	ErrNegativeClicks     = errors.New("rewards: total clicks must not be negative")
	ErrMixedCurrencies    = errors.New("rewards: tiers must share a single currency")
	ErrDuplicateThreshold = errors.New("rewards: tier thresholds must be distinct")
)

// ValidateTiers checks a reward schedule for configuration errors:
// non-positive or duplicate thresholds, negative amounts, mixed
// currencies. An empty schedule is valid.
func ValidateTiers(tiers []Tier) error {
	seen := make(map[int64]struct{}, len(tiers))
	currency := ""

	for _, tier := range tiers {
		if tier.ClickThreshold <= 0 {
			return fmt.Errorf("rewards: tier threshold %d is not a positive integer", tier.ClickThreshold)
		}
		if _, dup := seen[tier.ClickThreshold]; dup {
			return fmt.Errorf("%w: threshold %d appears twice", ErrDuplicateThreshold, tier.ClickThreshold)
		}
		seen[tier.ClickThreshold] = struct{}{}

		if tier.Amount.IsNegative() {
			return fmt.Errorf("rewards: tier %d has negative amount %s", tier.ClickThreshold, tier.Amount)
		}

		if currency == "" {
			currency = tier.Currency
		} else if tier.Currency != currency {
			return fmt.Errorf("%w: found %q and %q", ErrMixedCurrencies, currency, tier.Currency)
		}
	}
	return nil
}

// ComputeEarnings converts a raw click total into earned money using a
// greedy largest-threshold-first decomposition, the same shape as
// coin change with unlimited supply per denomination. The result is
// deterministic and independent of the order tiers are supplied in.
//
// The breakdown lists every configured tier in descending threshold
// order, including tiers that applied zero times, so the decomposition
// is fully auditable.
func ComputeEarnings(totalClicks int64, tiers []Tier) (*Earnings, error) {
	if totalClicks < 0 {
		return nil, ErrNegativeClicks
	}
	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}

	earnings := &Earnings{
		TotalEarnings:   decimal.Zero,
		Breakdown:       []TierEarning{},
		RemainingClicks: totalClicks,
	}
	if len(tiers) == 0 {
		return earnings, nil
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].ClickThreshold > sorted[b].ClickThreshold
	})
	earnings.Currency = sorted[0].Currency

	remaining := totalClicks
	for _, tier := range sorted {
		countApplied := remaining / tier.ClickThreshold
		amountEarned := tier.Amount.Mul(decimal.NewFromInt(countApplied))
		remaining = remaining % tier.ClickThreshold

		earnings.Breakdown = append(earnings.Breakdown, TierEarning{
			TierThreshold: tier.ClickThreshold,
			CountApplied:  countApplied,
			AmountEarned:  amountEarned,
		})
		earnings.TotalEarnings = earnings.TotalEarnings.Add(amountEarned)
	}
	earnings.RemainingClicks = remaining

	// Distance to the smallest threshold still above the remainder; 0
	// when even the smallest tier is within the remainder already.
	next := int64(0)
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].ClickThreshold > remaining {
			next = sorted[i].ClickThreshold - remaining
			break
		}
	}
	earnings.ClicksToNextTier = &next

	return earnings, nil
}

// ComputeLinearEarnings is the per-click flat-rate model: every click
// earns ratePerClick. It is a distinct strategy from the threshold
// schedule, not a mode of it, so the two semantics can never be
// conflated by a flag.
func ComputeLinearEarnings(totalClicks int64, ratePerClick decimal.Decimal, currency string) (*Earnings, error) {
	if totalClicks < 0 {
		return nil, ErrNegativeClicks
	}
	if ratePerClick.IsNegative() {
		return nil, fmt.Errorf("rewards: per-click rate %s is negative", ratePerClick)
	}

	return &Earnings{
		TotalEarnings:   ratePerClick.Mul(decimal.NewFromInt(totalClicks)),
		Currency:        currency,
		Breakdown:       []TierEarning{},
		RemainingClicks: 0,
	}, nil
}
