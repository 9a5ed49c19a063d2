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
	"testing"

	"github.com/shopspring/decimal"
)

func usd(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeEarnings_GreedyDecomposition(t *testing.T) {
	tiers := []Tier{
		{ClickThreshold: 100, Amount: usd("50"), Currency: "USD"},
		{ClickThreshold: 10, Amount: usd("6"), Currency: "USD"},
	}

	earnings, err := ComputeEarnings(235, tiers)
	if err != nil {
		t.Fatalf("ComputeEarnings failed: %v", err)
	}

	// 235 = 2x100 + 3x10 + 5 leftover = 2*50 + 3*6
	if !earnings.TotalEarnings.Equal(usd("118")) {
		t.Errorf("Expected total 118, got %s", earnings.TotalEarnings)
	}
	if earnings.RemainingClicks != 5 {
		t.Errorf("Expected 5 remaining clicks, got %d", earnings.RemainingClicks)
	}
	if earnings.Currency != "USD" {
		t.Errorf("Expected currency USD, got %q", earnings.Currency)
	}
	if earnings.ClicksToNextTier == nil || *earnings.ClicksToNextTier != 5 {
		t.Errorf("Expected 5 clicks to next tier, got %v", earnings.ClicksToNextTier)
	}

	if len(earnings.Breakdown) != 2 {
		t.Fatalf("Expected 2 breakdown rows, got %d", len(earnings.Breakdown))
	}
	if earnings.Breakdown[0].TierThreshold != 100 || earnings.Breakdown[0].CountApplied != 2 {
		t.Errorf("Unexpected first breakdown row: %+v", earnings.Breakdown[0])
	}
	if earnings.Breakdown[1].TierThreshold != 10 || earnings.Breakdown[1].CountApplied != 3 {
		t.Errorf("Unexpected second breakdown row: %+v", earnings.Breakdown[1])
	}
}

func TestComputeEarnings_OrderIndependent(t *testing.T) {
	ascending := []Tier{
		{ClickThreshold: 10, Amount: usd("6"), Currency: "USD"},
		{ClickThreshold: 100, Amount: usd("50"), Currency: "USD"},
	}
	descending := []Tier{
		{ClickThreshold: 100, Amount: usd("50"), Currency: "USD"},
		{ClickThreshold: 10, Amount: usd("6"), Currency: "USD"},
	}

	a, err := ComputeEarnings(235, ascending)
	if err != nil {
		t.Fatalf("ComputeEarnings failed: %v", err)
	}
	b, err := ComputeEarnings(235, descending)
	if err != nil {
		t.Fatalf("ComputeEarnings failed: %v", err)
	}

	if !a.TotalEarnings.Equal(b.TotalEarnings) {
		t.Errorf("Tier order changed the total: %s vs %s", a.TotalEarnings, b.TotalEarnings)
	}
	if a.RemainingClicks != b.RemainingClicks {
		t.Errorf("Tier order changed the remainder: %d vs %d", a.RemainingClicks, b.RemainingClicks)
	}
	// Breakdown is always reported largest threshold first.
	if a.Breakdown[0].TierThreshold != 100 || b.Breakdown[0].TierThreshold != 100 {
		t.Error("Expected breakdown sorted by descending threshold regardless of input order")
	}
}

func TestComputeEarnings_ZeroClicks(t *testing.T) {
	tiers := []Tier{{ClickThreshold: 10, Amount: usd("6"), Currency: "USD"}}

	earnings, err := ComputeEarnings(0, tiers)
	if err != nil {
		t.Fatalf("ComputeEarnings failed: %v", err)
	}

	if !earnings.TotalEarnings.IsZero() {
		t.Errorf("Expected zero earnings, got %s", earnings.TotalEarnings)
	}
	if earnings.RemainingClicks != 0 {
		t.Errorf("Expected 0 remaining, got %d", earnings.RemainingClicks)
	}
	if earnings.ClicksToNextTier == nil || *earnings.ClicksToNextTier != 10 {
		t.Errorf("Expected 10 clicks to next tier, got %v", earnings.ClicksToNextTier)
	}
	if len(earnings.Breakdown) != 1 || earnings.Breakdown[0].CountApplied != 0 {
		t.Errorf("Expected one zero-count breakdown row, got %+v", earnings.Breakdown)
	}
}

func TestComputeEarnings_EmptySchedule(t *testing.T) {
	earnings, err := ComputeEarnings(500, nil)
	if err != nil {
		t.Fatalf("ComputeEarnings failed: %v", err)
	}

	if !earnings.TotalEarnings.IsZero() {
		t.Errorf("Expected zero earnings, got %s", earnings.TotalEarnings)
	}
	if earnings.RemainingClicks != 500 {
		t.Errorf("Expected all clicks to remain, got %d", earnings.RemainingClicks)
	}
	if earnings.ClicksToNextTier != nil {
		t.Errorf("Expected nil next tier for empty schedule, got %d", *earnings.ClicksToNextTier)
	}
	if earnings.Currency != "" {
		t.Errorf("Expected empty currency, got %q", earnings.Currency)
	}
}

func TestComputeEarnings_ExactMultiple(t *testing.T) {
	tiers := []Tier{{ClickThreshold: 50, Amount: usd("12.50"), Currency: "EUR"}}

	earnings, err := ComputeEarnings(150, tiers)
	if err != nil {
		t.Fatalf("ComputeEarnings failed: %v", err)
	}

	if !earnings.TotalEarnings.Equal(usd("37.50")) {
		t.Errorf("Expected 37.50, got %s", earnings.TotalEarnings)
	}
	if earnings.RemainingClicks != 0 {
		t.Errorf("Expected 0 remaining, got %d", earnings.RemainingClicks)
	}
	if earnings.ClicksToNextTier == nil || *earnings.ClicksToNextTier != 50 {
		t.Errorf("Expected 50 clicks to next tier, got %v", earnings.ClicksToNextTier)
	}
}

func TestComputeEarnings_NegativeClicks(t *testing.T) {
	_, err := ComputeEarnings(-1, nil)
	if !errors.Is(err, ErrNegativeClicks) {
		t.Errorf("Expected ErrNegativeClicks, got %v", err)
	}
}

func TestValidateTiers_MixedCurrencies(t *testing.T) {
	tiers := []Tier{
		{ClickThreshold: 100, Amount: usd("50"), Currency: "USD"},
		{ClickThreshold: 10, Amount: usd("6"), Currency: "EUR"},
	}

	err := ValidateTiers(tiers)
	if !errors.Is(err, ErrMixedCurrencies) {
		t.Errorf("Expected ErrMixedCurrencies, got %v", err)
	}
}

func TestValidateTiers_DuplicateThreshold(t *testing.T) {
	tiers := []Tier{
		{ClickThreshold: 100, Amount: usd("50"), Currency: "USD"},
		{ClickThreshold: 100, Amount: usd("40"), Currency: "USD"},
	}

	err := ValidateTiers(tiers)
	if !errors.Is(err, ErrDuplicateThreshold) {
		t.Errorf("Expected ErrDuplicateThreshold, got %v", err)
	}
}

func TestValidateTiers_NonPositiveThreshold(t *testing.T) {
	if err := ValidateTiers([]Tier{{ClickThreshold: 0, Amount: usd("5"), Currency: "USD"}}); err == nil {
		t.Error("Expected error for zero threshold")
	}
	if err := ValidateTiers([]Tier{{ClickThreshold: -10, Amount: usd("5"), Currency: "USD"}}); err == nil {
		t.Error("Expected error for negative threshold")
	}
}

func TestValidateTiers_NegativeAmount(t *testing.T) {
	tiers := []Tier{{ClickThreshold: 10, Amount: usd("-1"), Currency: "USD"}}
	if err := ValidateTiers(tiers); err == nil {
		t.Error("Expected error for negative amount")
	}
}

func TestValidateTiers_EmptyIsValid(t *testing.T) {
	if err := ValidateTiers(nil); err != nil {
		t.Errorf("Expected empty schedule to validate, got %v", err)
	}
}

func TestComputeLinearEarnings(t *testing.T) {
	earnings, err := ComputeLinearEarnings(1000, usd("0.03"), "USD")
	if err != nil {
		t.Fatalf("ComputeLinearEarnings failed: %v", err)
	}

	if !earnings.TotalEarnings.Equal(usd("30")) {
		t.Errorf("Expected 30, got %s", earnings.TotalEarnings)
	}
	if earnings.RemainingClicks != 0 {
		t.Errorf("Expected 0 remaining, got %d", earnings.RemainingClicks)
	}
}

func TestComputeLinearEarnings_NegativeRate(t *testing.T) {
	if _, err := ComputeLinearEarnings(10, usd("-0.01"), "USD"); err == nil {
		t.Error("Expected error for negative rate")
	}
}
