// MIT License
//
// # Copyright (c) 2026 Kolin
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
package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

const (
	// DefaultQueryTimeout is the default timeout for analytics queries (30 seconds)
	DefaultQueryTimeout = 30 * time.Second

	// UnknownBucket is the label for clicks whose geo enrichment did not
	// resolve. They are reported explicitly, never silently dropped.
	UnknownBucket = "Unknown"
)

// Filter scopes an analytics query. TeamID is always required so a
// user-level scope can never cross tenants; UserID of zero means
// team-wide. Start/End form a half-open [Start, End) range on
// created_at; either side may be nil.
type Filter struct {
	TeamID uint
	UserID uint
	Start  *time.Time
	End    *time.Time
}

// CityAggregate is the per-city breakdown inside a country rollup.
type CityAggregate struct {
	City   string `json:"city"`
	Clicks int64  `json:"clicks"`
}

// CountryAggregate is one country's rollup with its city breakdown.
// The invariant sum(Cities[].Clicks) == Clicks holds because both come
// from the same filtered row set.
type CountryAggregate struct {
	Country   string          `json:"country"`
	Clicks    int64           `json:"clicks"`
	UniqueIPs int64           `json:"unique_ips"`
	Cities    []CityAggregate `json:"cities"`
}

// ReferrerAggregate is one referrer source's rollup.
type ReferrerAggregate struct {
	Source     string  `json:"source"`
	Clicks     int64   `json:"clicks"`
	UniqueIPs  int64   `json:"unique_ips"`
	Percentage float64 `json:"percentage"`
}

// Totals holds the scope-wide counters. Unique counts are exact set
// cardinalities over the filtered rows, not estimates.
type Totals struct {
	TotalClicks     int64 `json:"total_clicks"`
	UniqueIPs       int64 `json:"unique_ips"`
	UniqueCountries int64 `json:"unique_countries"`
}

// AnalyticsRepository computes read-only rollups over click events.
// Every method is idempotent for an unchanged dataset and safe to call
// concurrently with ongoing ingestion: each call is a single query (or
// queries against the same WAL snapshot) with no side effects.
type AnalyticsRepository interface {
	AggregateByCountry(filter Filter) ([]*CountryAggregate, error)
	AggregateByReferrer(filter Filter) ([]*ReferrerAggregate, error)
	Totals(filter Filter) (*Totals, error)
}

type analyticsRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB, logger *pterm.Logger) AnalyticsRepository {
	return &analyticsRepo{db: db, logger: logger}
}

// withTimeout creates a context with default query timeout
func (r *analyticsRepo) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultQueryTimeout)
}

// buildWhere translates a Filter into a WHERE clause and its args.
func buildWhere(filter Filter) (string, []interface{}) {
	whereClause := "team_id = ?"
	args := []interface{}{filter.TeamID}

	if filter.UserID != 0 {
		whereClause += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Start != nil {
		whereClause += " AND created_at >= ?"
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		whereClause += " AND created_at < ?"
		args = append(args, *filter.End)
	}

	return whereClause, args
}

// AggregateByCountry groups the filtered clicks by country with a
// nested per-city breakdown. Unresolved rows land in the explicit
// Unknown bucket. Countries (and cities within them) are ordered by
// clicks descending, name ascending on ties, so repeated calls over the
// same data produce identical output.
func (r *analyticsRepo) AggregateByCountry(filter Filter) ([]*CountryAggregate, error) {
	ctx, cancel := r.withTimeout()
	defer cancel()

	whereClause, args := buildWhere(filter)

	// Country-level pass: the per-country unique IP count cannot be
	// summed from city rows, so it gets its own grouped query.
	type countryRow struct {
		Country   string `gorm:"column:country"`
		Clicks    int64  `gorm:"column:clicks"`
		UniqueIPs int64  `gorm:"column:unique_ips"`
	}
	var countryRows []countryRow

	countrySQL := `
		SELECT
			country,
			COUNT(*) as clicks,
			COUNT(DISTINCT ip_address) as unique_ips
		FROM click_events
		WHERE ` + whereClause + `
		GROUP BY country
	`

	// City-level pass over the same filtered rows.
	type cityRow struct {
		Country string `gorm:"column:country"`
		City    string `gorm:"column:city"`
		Clicks  int64  `gorm:"column:clicks"`
	}
	var cityRows []cityRow

	citySQL := `
		SELECT country, city, COUNT(*) as clicks
		FROM click_events
		WHERE ` + whereClause + `
		GROUP BY country, city
	`

	// Both passes must observe the same snapshot: a click ingested
	// between them would make the city sums disagree with the country
	// totals. One read transaction pins the snapshot for both queries.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(countrySQL, args...).Scan(&countryRows).Error; err != nil {
			r.logger.WithCaller().Error("Failed to aggregate clicks by country", r.logger.Args("error", err))
			return err
		}
		if err := tx.Raw(citySQL, args...).Scan(&cityRows).Error; err != nil {
			r.logger.WithCaller().Error("Failed to aggregate clicks by city", r.logger.Args("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	byCountry := make(map[string]*CountryAggregate, len(countryRows))
	aggregates := make([]*CountryAggregate, 0, len(countryRows))
	for _, row := range countryRows {
		name := row.Country
		if name == "" {
			name = UnknownBucket
		}
		agg := &CountryAggregate{
			Country:   name,
			Clicks:    row.Clicks,
			UniqueIPs: row.UniqueIPs,
			Cities:    []CityAggregate{},
		}
		byCountry[row.Country] = agg
		aggregates = append(aggregates, agg)
	}

	for _, row := range cityRows {
		agg, ok := byCountry[row.Country]
		if !ok {
			continue
		}
		city := row.City
		if city == "" {
			city = UnknownBucket
		}
		agg.Cities = append(agg.Cities, CityAggregate{City: city, Clicks: row.Clicks})
	}

	sort.Slice(aggregates, func(a, b int) bool {
		if aggregates[a].Clicks != aggregates[b].Clicks {
			return aggregates[a].Clicks > aggregates[b].Clicks
		}
		return aggregates[a].Country < aggregates[b].Country
	})
	for _, agg := range aggregates {
		cities := agg.Cities
		sort.Slice(cities, func(a, b int) bool {
			if cities[a].Clicks != cities[b].Clicks {
				return cities[a].Clicks > cities[b].Clicks
			}
			return cities[a].City < cities[b].City
		})
	}

	r.logger.Trace("Generated country aggregates",
		r.logger.Args("team_id", filter.TeamID, "countries", len(aggregates)))
	return aggregates, nil
}

// AggregateByReferrer groups the filtered clicks by classified referrer
// source. Percentage is each source's share of the filtered total (0
// when the scope is empty, never a division error).
func (r *analyticsRepo) AggregateByReferrer(filter Filter) ([]*ReferrerAggregate, error) {
	ctx, cancel := r.withTimeout()
	defer cancel()

	whereClause, args := buildWhere(filter)

	var aggregates []*ReferrerAggregate
	query := `
		SELECT
			referrer_source as source,
			COUNT(*) as clicks,
			COUNT(DISTINCT ip_address) as unique_ips
		FROM click_events
		WHERE ` + whereClause + `
		GROUP BY referrer_source
	`
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&aggregates).Error; err != nil {
		r.logger.WithCaller().Error("Failed to aggregate clicks by referrer", r.logger.Args("error", err))
		return nil, err
	}

	var total int64
	for _, agg := range aggregates {
		total += agg.Clicks
	}
	if total > 0 {
		for _, agg := range aggregates {
			agg.Percentage = float64(agg.Clicks) / float64(total) * 100
		}
	}

	sort.Slice(aggregates, func(a, b int) bool {
		if aggregates[a].Clicks != aggregates[b].Clicks {
			return aggregates[a].Clicks > aggregates[b].Clicks
		}
		return aggregates[a].Source < aggregates[b].Source
	})

	r.logger.Trace("Generated referrer aggregates",
		r.logger.Args("team_id", filter.TeamID, "sources", len(aggregates), "total_clicks", total))
	return aggregates, nil
}

// Totals returns the scope-wide counters in a single aggregated query.
// An empty or nonexistent scope yields zeroes, not an error.
func (r *analyticsRepo) Totals(filter Filter) (*Totals, error) {
	ctx, cancel := r.withTimeout()
	defer cancel()

	whereClause, args := buildWhere(filter)

	totals := &Totals{}
	query := `
		SELECT
			COUNT(*) as total_clicks,
			COUNT(DISTINCT ip_address) as unique_ips,
			COUNT(DISTINCT CASE WHEN country != '' THEN country END) as unique_countries
		FROM click_events
		WHERE ` + whereClause
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(totals).Error; err != nil {
		r.logger.WithCaller().Error("Failed to compute click totals", r.logger.Args("error", err))
		return nil, err
	}

	return totals, nil
}
