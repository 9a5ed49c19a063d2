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
package database

import (
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// Covering indexes for the aggregation queries. AutoMigrate creates the
// single-column indexes declared on the models; these serve the grouped
// rollups directly.
var aggregationIndexes = map[string]string{
	"idx_click_team_created":  "CREATE INDEX IF NOT EXISTS idx_click_team_created ON click_events(team_id, created_at)",
	"idx_click_geo_agg":       "CREATE INDEX IF NOT EXISTS idx_click_geo_agg ON click_events(team_id, country, city)",
	"idx_click_referrer_agg":  "CREATE INDEX IF NOT EXISTS idx_click_referrer_agg ON click_events(team_id, referrer_source)",
	"idx_click_user_created":  "CREATE INDEX IF NOT EXISTS idx_click_user_created ON click_events(team_id, user_id, created_at)",
	"idx_click_ip_agg":        "CREATE INDEX IF NOT EXISTS idx_click_ip_agg ON click_events(team_id, ip_address)",
}

// OptimizeDatabase applies additional optimizations after initial migrations.
// It reconciles expected performance indexes and verifies SQLite settings.
func OptimizeDatabase(db *gorm.DB, logger *pterm.Logger) error {
	logger.Debug("Applying database optimizations...")

	// Verify WAL mode is enabled (debug level - only show if there's a problem)
	var journalMode string
	if err := db.Raw("PRAGMA journal_mode").Scan(&journalMode).Error; err != nil {
		logger.Warn("Failed to check journal mode", logger.Args("error", err))
	} else if journalMode != "wal" {
		logger.Warn("Database not in WAL mode", logger.Args("mode", journalMode))
	} else {
		logger.Trace("Database journal mode verified", logger.Args("mode", journalMode))
	}

	created := 0
	for name, stmt := range aggregationIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Warn("Failed to create index", logger.Args("index", name, "error", err))
			continue
		}
		created++
	}
	logger.Debug("Performance indexes reconciled", logger.Args("ensured", created))

	// Analyze tables for query optimizer (only log if it fails)
	if err := db.Exec("ANALYZE").Error; err != nil {
		logger.Warn("Failed to analyze database", logger.Args("error", err))
	} else {
		logger.Trace("Database statistics analyzed")
	}

	if err := db.Exec("PRAGMA optimize").Error; err != nil {
		logger.Debug("PRAGMA optimize failed", logger.Args("error", err))
	} else {
		logger.Trace("PRAGMA optimize executed")
	}

	logger.Debug("Database optimizations completed")
	return nil
}
