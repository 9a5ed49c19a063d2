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
package clicks

import (
	"sync"
	"testing"
	"time"

	"linklift/internal/database/models"
	"linklift/internal/geo"

	"github.com/pterm/pterm"
)

// memoryRepo collects written events in memory.
type memoryRepo struct {
	mu     sync.Mutex
	events []*models.ClickEvent
}

func (r *memoryRepo) Create(event *models.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *memoryRepo) CreateBatch(events []*models.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *memoryRepo) FindRecent(teamID uint, limit int) ([]*models.ClickEvent, error) {
	return nil, nil
}

func (r *memoryRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.events)), nil
}

func (r *memoryRepo) CountOlderThan(cutoff time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryRepo) stored() []*models.ClickEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ClickEvent, len(r.events))
	copy(out, r.events)
	return out
}

func testRecorder(repo *memoryRepo, queueSize, batchSize int) *Recorder {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
	return NewRecorder(repo, geo.NewRangeTable(logger), logger, queueSize, batchSize)
}

func TestRecord_EnrichesAtWriteTime(t *testing.T) {
	repo := &memoryRepo{}
	recorder := testRecorder(repo, 16, 4)

	event, err := recorder.Record(Click{
		URLID:      7,
		UserID:     3,
		TeamID:     1,
		IPAddress:  "8.8.8.8",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		RefererURL: "https://www.facebook.com/page",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if event.Country != "US" || event.City != "Mountain View" {
		t.Errorf("Expected geo enrichment, got country=%q city=%q", event.Country, event.City)
	}
	if event.ReferrerSource != "Facebook" {
		t.Errorf("Expected Facebook referrer, got %q", event.ReferrerSource)
	}
	if event.Browser != "Chrome" || event.OS != "Windows" || event.DeviceType != "desktop" {
		t.Errorf("Unexpected user agent enrichment: %+v", event)
	}
	if len(repo.stored()) != 1 {
		t.Errorf("Expected 1 stored event, got %d", len(repo.stored()))
	}
}

func TestRecord_PrivateIPStoredUnresolved(t *testing.T) {
	repo := &memoryRepo{}
	recorder := testRecorder(repo, 16, 4)

	event, err := recorder.Record(Click{
		URLID:     1,
		UserID:    1,
		TeamID:    1,
		IPAddress: "192.168.1.50",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// The click is written even though enrichment resolved nothing.
	if event.Country != "" || event.City != "" {
		t.Errorf("Expected unresolved location, got country=%q city=%q", event.Country, event.City)
	}
	if event.ReferrerSource != "Direct" {
		t.Errorf("Expected Direct for empty referrer, got %q", event.ReferrerSource)
	}
	if len(repo.stored()) != 1 {
		t.Error("Expected the unresolved click to be stored anyway")
	}
}

func TestEnqueue_DrainedOnStop(t *testing.T) {
	repo := &memoryRepo{}
	recorder := testRecorder(repo, 64, 8)
	recorder.Start()

	for i := 0; i < 20; i++ {
		recorder.Enqueue(Click{URLID: 1, UserID: 1, TeamID: 1, IPAddress: "8.8.8.8"})
	}
	recorder.Stop()

	if got := len(repo.stored()); got != 20 {
		t.Errorf("Expected all 20 queued clicks persisted after Stop, got %d", got)
	}
	if recorder.Pending() != 0 {
		t.Errorf("Expected empty queue after Stop, got %d", recorder.Pending())
	}
}

func TestEnqueue_DropsWhenSaturated(t *testing.T) {
	repo := &memoryRepo{}
	recorder := testRecorder(repo, 2, 100)
	// Not started: nothing consumes the queue.

	for i := 0; i < 5; i++ {
		recorder.Enqueue(Click{URLID: 1, UserID: 1, TeamID: 1, IPAddress: "8.8.8.8"})
	}

	if recorder.Pending() != 2 {
		t.Errorf("Expected 2 queued clicks, got %d", recorder.Pending())
	}
	if dropped := recorder.totalDropped.Load(); dropped != 3 {
		t.Errorf("Expected 3 dropped clicks, got %d", dropped)
	}
}
