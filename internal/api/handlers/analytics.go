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
	"strconv"
	"time"

	"linklift/internal/database/repositories"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// AnalyticsHandler serves the aggregated click rollups
type AnalyticsHandler struct {
	analyticsRepo repositories.AnalyticsRepository
	logger        *pterm.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsRepo repositories.AnalyticsRepository, logger *pterm.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsRepo: analyticsRepo,
		logger:        logger,
	}
}

// parseFilter builds the query scope from the path and query string.
// start/end accept RFC 3339 timestamps or bare dates and form a
// half-open range: start is inclusive, end exclusive.
func parseFilter(c *gin.Context) (repositories.Filter, bool) {
	teamID, ok := parseTeamID(c)
	if !ok {
		return repositories.Filter{}, false
	}
	filter := repositories.Filter{TeamID: teamID}

	if u := c.Query("user_id"); u != "" {
		val, err := strconv.ParseUint(u, 10, 32)
		if err != nil || val == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return repositories.Filter{}, false
		}
		filter.UserID = uint(val)
	}

	if s := c.Query("start"); s != "" {
		start, err := parseTime(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start: use RFC 3339 or YYYY-MM-DD"})
			return repositories.Filter{}, false
		}
		filter.Start = &start
	}
	if e := c.Query("end"); e != "" {
		end, err := parseTime(e)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end: use RFC 3339 or YYYY-MM-DD"})
			return repositories.Filter{}, false
		}
		filter.End = &end
	}

	if filter.Start != nil && filter.End != nil && !filter.Start.Before(*filter.End) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be before end"})
		return repositories.Filter{}, false
	}

	return filter, true
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// GetCountries returns the per-country click rollup with city breakdown.
func (h *AnalyticsHandler) GetCountries(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	aggregates, err := h.analyticsRepo.AggregateByCountry(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate by country"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": aggregates})
}

// GetReferrers returns the per-source click rollup with traffic shares.
func (h *AnalyticsHandler) GetReferrers(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	aggregates, err := h.analyticsRepo.AggregateByReferrer(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate by referrer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrers": aggregates})
}

// GetTotals returns the scope-wide counters.
func (h *AnalyticsHandler) GetTotals(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	totals, err := h.analyticsRepo.Totals(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute totals"})
		return
	}

	c.JSON(http.StatusOK, totals)
}
