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
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"linklift/internal/clicks"
	"linklift/internal/database/repositories"
	"linklift/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SystemHandler handles health and system statistics requests
type SystemHandler struct {
	clickRepo     repositories.ClickEventRepository
	recorder      *clicks.Recorder
	logger        *pterm.Logger
	startTime     time.Time
	dbPath        string
	retentionDays int
}

// SystemStats holds process and storage statistics
type SystemStats struct {
	AppVersion    string  `json:"app_version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`
	GoVersion     string  `json:"go_version"`
	NumCPU        int     `json:"num_cpu"`
	NumGoroutines int     `json:"num_goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`

	TotalClicks     int64   `json:"total_clicks"`
	PendingClicks   int     `json:"pending_clicks"`
	ClicksToCleanup int64   `json:"clicks_to_cleanup"`
	DatabaseSizeMB  float64 `json:"database_size_mb"`
	DatabasePath    string  `json:"database_path"`
	RetentionDays   int     `json:"retention_days"`
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(
	clickRepo repositories.ClickEventRepository,
	recorder *clicks.Recorder,
	logger *pterm.Logger,
	dbPath string,
	retentionDays int,
) *SystemHandler {
	return &SystemHandler{
		clickRepo:     clickRepo,
		recorder:      recorder,
		logger:        logger,
		startTime:     time.Now(),
		dbPath:        dbPath,
		retentionDays: retentionDays,
	}
}

// GetHealth is the liveness probe.
func (h *SystemHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// GetSystemStats returns process and storage statistics.
func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(h.startTime)
	stats := &SystemStats{
		AppVersion:    version.Version,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime.Format(time.RFC3339),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,

		PendingClicks: h.recorder.Pending(),
		DatabasePath:  h.dbPath,
		RetentionDays: h.retentionDays,
	}

	if total, err := h.clickRepo.Count(); err == nil {
		stats.TotalClicks = total
	}
	if h.retentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -h.retentionDays)
		if stale, err := h.clickRepo.CountOlderThan(cutoff); err == nil {
			stats.ClicksToCleanup = stale
		}
	}
	if info, err := os.Stat(h.dbPath); err == nil {
		stats.DatabaseSizeMB = float64(info.Size()) / 1024 / 1024
	}

	c.JSON(http.StatusOK, stats)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
