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
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardTier is one step of a team's reward schedule: every
// ClickThreshold clicks earn Amount once. Thresholds are distinct
// positive integers within a team and all tiers share one currency;
// both constraints are enforced by the rewards calculator, not here.
type RewardTier struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	TeamID         uint            `gorm:"not null;index" json:"team_id"`
	ClickThreshold int64           `gorm:"not null" json:"click_threshold"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency       string          `gorm:"not null;size:3" json:"currency"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RewardTier) TableName() string {
	return "reward_tiers"
}
