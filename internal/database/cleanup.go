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
	"time"

	"linklift/internal/database/models"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// CleanupService purges click events older than the retention window on
// a daily schedule. This is the only code path that ever deletes click
// rows; the recorder and aggregation layers are append/read only.
type CleanupService struct {
	db              *gorm.DB
	logger          *pterm.Logger
	retentionDays   int
	cleanupInterval time.Duration
	cleanupTime     string
	vacuumEnabled   bool
	stopChan        chan struct{}
	running         bool

	// Stats tracking
	lastRunTime     time.Time
	recordsDeleted  int64
	cleanupDuration time.Duration
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(db *gorm.DB, logger *pterm.Logger, retentionDays int, cleanupInterval time.Duration, cleanupTime string, vacuumEnabled bool) *CleanupService {
	return &CleanupService{
		db:              db,
		logger:          logger,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		cleanupTime:     cleanupTime,
		vacuumEnabled:   vacuumEnabled,
		stopChan:        make(chan struct{}),
		running:         false,
	}
}

// Start begins the cleanup service
func (s *CleanupService) Start() {
	if s.retentionDays <= 0 {
		s.logger.Info("Click retention disabled (DB_RETENTION_DAYS=0), cleanup service not started")
		return
	}

	s.running = true
	s.logger.Info("Starting click retention service",
		s.logger.Args(
			"retention_days", s.retentionDays,
			"cleanup_time", s.cleanupTime,
			"vacuum_enabled", s.vacuumEnabled,
		))

	go s.scheduledCleanupLoop()
}

// Stop stops the cleanup service
func (s *CleanupService) Stop() {
	if !s.running {
		return
	}

	s.logger.Info("Stopping click retention service")
	close(s.stopChan)
	s.running = false
}

// scheduledCleanupLoop runs cleanup at scheduled time daily
func (s *CleanupService) scheduledCleanupLoop() {
	// Run initial cleanup check after 1 minute
	time.Sleep(1 * time.Minute)

	for {
		select {
		case <-s.stopChan:
			return
		default:
			now := time.Now()
			targetTime := s.parseCleanupTime(now)

			// If target time has passed today, schedule for tomorrow
			if now.After(targetTime) {
				targetTime = targetTime.Add(24 * time.Hour)
			}

			waitDuration := time.Until(targetTime)
			s.logger.Debug("Next cleanup scheduled",
				s.logger.Args("next_run", targetTime.Format("2006-01-02 15:04:05"), "wait_duration", waitDuration.Round(time.Minute)))

			select {
			case <-s.stopChan:
				return
			case <-time.After(min(waitDuration, s.cleanupInterval)):
				if time.Now().After(targetTime.Add(-1 * time.Minute)) {
					s.RunCleanup()
				}
			}
		}
	}
}

// parseCleanupTime parses the cleanup time string (HH:MM) and returns today's time
func (s *CleanupService) parseCleanupTime(baseTime time.Time) time.Time {
	cleanupTime, err := time.Parse("15:04", s.cleanupTime)
	if err != nil {
		s.logger.Warn("Invalid cleanup time format, using 02:00",
			s.logger.Args("configured", s.cleanupTime, "error", err))
		cleanupTime, _ = time.Parse("15:04", "02:00")
	}

	return time.Date(
		baseTime.Year(), baseTime.Month(), baseTime.Day(),
		cleanupTime.Hour(), cleanupTime.Minute(), 0, 0,
		baseTime.Location(),
	)
}

// RunCleanup deletes click events older than the retention window and
// optionally reclaims disk space.
func (s *CleanupService) RunCleanup() {
	start := time.Now()
	cutoff := start.AddDate(0, 0, -s.retentionDays)

	s.logger.Info("Starting scheduled click cleanup",
		s.logger.Args("retention_days", s.retentionDays, "cutoff", cutoff.Format("2006-01-02")))

	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ClickEvent{})
	if result.Error != nil {
		s.logger.WithCaller().Error("Click cleanup failed", s.logger.Args("error", result.Error))
		return
	}

	s.lastRunTime = start
	s.recordsDeleted = result.RowsAffected
	s.cleanupDuration = time.Since(start)

	s.logger.Info("Click cleanup completed",
		s.logger.Args(
			"deleted", result.RowsAffected,
			"duration_ms", s.cleanupDuration.Milliseconds(),
		))

	if s.vacuumEnabled && result.RowsAffected > 0 {
		vacuumStart := time.Now()
		if err := s.db.Exec("VACUUM").Error; err != nil {
			s.logger.Warn("VACUUM failed after cleanup", s.logger.Args("error", err))
		} else {
			s.logger.Info("Database vacuumed",
				s.logger.Args("duration_ms", time.Since(vacuumStart).Milliseconds()))
		}
	}
}
