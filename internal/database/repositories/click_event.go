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
package repositories

import (
	"time"

	"linklift/internal/database/models"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// ClickEventRepository handles the append-only click event store. There
// is deliberately no update method: enriched rows are immutable once
// written.
type ClickEventRepository interface {
	Create(event *models.ClickEvent) error
	CreateBatch(events []*models.ClickEvent) error
	FindRecent(teamID uint, limit int) ([]*models.ClickEvent, error)
	Count() (int64, error)
	CountOlderThan(cutoff time.Time) (int64, error)
}

type clickEventRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

// NewClickEventRepository creates a new click event repository
func NewClickEventRepository(db *gorm.DB, logger *pterm.Logger) ClickEventRepository {
	return &clickEventRepo{db: db, logger: logger}
}

func (r *clickEventRepo) Create(event *models.ClickEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		r.logger.WithCaller().Error("Failed to insert click event",
			r.logger.Args("url_id", event.URLID, "error", err))
		return err
	}
	return nil
}

func (r *clickEventRepo) CreateBatch(events []*models.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	if err := r.db.CreateInBatches(events, 100).Error; err != nil {
		r.logger.WithCaller().Error("Failed to insert click event batch",
			r.logger.Args("count", len(events), "error", err))
		return err
	}

	r.logger.Trace("Inserted click event batch", r.logger.Args("count", len(events)))
	return nil
}

func (r *clickEventRepo) FindRecent(teamID uint, limit int) ([]*models.ClickEvent, error) {
	var events []*models.ClickEvent
	err := r.db.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *clickEventRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.ClickEvent{}).Count(&count).Error
	return count, err
}

func (r *clickEventRepo) CountOlderThan(cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ClickEvent{}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	return count, err
}
