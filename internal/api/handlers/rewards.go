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
package handlers

import (
	"net/http"

	"linklift/internal/database/models"
	"linklift/internal/database/repositories"
	"linklift/internal/rewards"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
)

// RewardsHandler serves earnings reports and tier schedule management
type RewardsHandler struct {
	analyticsRepo repositories.AnalyticsRepository
	tierRepo      repositories.RewardTierRepository
	logger        *pterm.Logger
}

// NewRewardsHandler creates a new rewards handler
func NewRewardsHandler(analyticsRepo repositories.AnalyticsRepository, tierRepo repositories.RewardTierRepository, logger *pterm.Logger) *RewardsHandler {
	return &RewardsHandler{
		analyticsRepo: analyticsRepo,
		tierRepo:      tierRepo,
		logger:        logger,
	}
}

// GetEarnings decomposes the filtered click total over the team's
// stored tier schedule. The same start/end and user_id filters as the
// analytics routes apply, so earnings can be computed per member or per
// billing period.
func (h *RewardsHandler) GetEarnings(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	totals, err := h.analyticsRepo.Totals(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute click total"})
		return
	}

	stored, err := h.tierRepo.FindByTeam(filter.TeamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reward tiers"})
		return
	}

	tiers := make([]rewards.Tier, len(stored))
	for i, tier := range stored {
		tiers[i] = rewards.Tier{
			ClickThreshold: tier.ClickThreshold,
			Amount:         tier.Amount,
			Currency:       tier.Currency,
		}
	}

	earnings, err := rewards.ComputeEarnings(totals.TotalClicks, tiers)
	if err != nil {
		// A stored schedule failing validation means it was corrupted
		// outside the API, surface it loudly.
		h.logger.WithCaller().Error("Stored reward schedule is invalid",
			h.logger.Args("team_id", filter.TeamID, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored reward schedule is invalid"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_clicks": totals.TotalClicks,
		"earnings":     earnings,
	})
}

// GetRewardTiers returns the team's schedule, largest threshold first.
func (h *RewardsHandler) GetRewardTiers(c *gin.Context) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return
	}

	tiers, err := h.tierRepo.FindByTeam(teamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reward tiers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

type putTiersRequest struct {
	Tiers []struct {
		ClickThreshold int64           `json:"click_threshold"`
		Amount         decimal.Decimal `json:"amount"`
		Currency       string          `json:"currency"`
	} `json:"tiers"`
}

// PutRewardTiers replaces the team's whole schedule. The batch is
// validated as a unit and rejected atomically: a bad tier leaves the
// previous schedule untouched.
func (h *RewardsHandler) PutRewardTiers(c *gin.Context) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return
	}

	var req putTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	tiers := make([]rewards.Tier, len(req.Tiers))
	for i, tier := range req.Tiers {
		tiers[i] = rewards.Tier{
			ClickThreshold: tier.ClickThreshold,
			Amount:         tier.Amount,
			Currency:       tier.Currency,
		}
	}
	if err := rewards.ValidateTiers(tiers); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	stored := make([]*models.RewardTier, len(req.Tiers))
	for i, tier := range req.Tiers {
		stored[i] = &models.RewardTier{
			TeamID:         teamID,
			ClickThreshold: tier.ClickThreshold,
			Amount:         tier.Amount,
			Currency:       tier.Currency,
		}
	}
	if err := h.tierRepo.ReplaceForTeam(teamID, stored); err != nil {
		h.logger.WithCaller().Error("Failed to replace reward tiers",
			h.logger.Args("team_id", teamID, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reward tiers"})
		return
	}

	h.logger.Info("Replaced reward schedule",
		h.logger.Args("team_id", teamID, "tiers", len(stored)))
	c.JSON(http.StatusOK, gin.H{"tiers": stored})
}
