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
	"sync/atomic"
	"time"

	"linklift/internal/database/models"
	"linklift/internal/database/repositories"
	"linklift/internal/geo"
	"linklift/internal/referrer"
	"linklift/internal/useragent"

	"github.com/pterm/pterm"
)

// Click is the raw per-click descriptor handed over by the redirect
// handler.
type Click struct {
	URLID      uint
	UserID     uint
	TeamID     uint
	IPAddress  string
	UserAgent  string
	RefererURL string
}

// Recorder enriches clicks and persists them. The synchronous Record
// path is used by callers that need the stored row back; the redirect
// path uses Enqueue so the HTTP response never waits on persistence.
//
// Enrichment failure is not an error by policy: an unresolvable IP or
// mangled referrer degrades to empty/"Unknown"/"Direct" fields and the
// click is still written. Losing the record is worse than losing the
// geographic precision.
type Recorder struct {
	repo     repositories.ClickEventRepository
	resolver geo.Resolver
	logger   *pterm.Logger

	queue      chan *models.ClickEvent
	batchSize  int
	flushEvery time.Duration

	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool

	// Statistics
	totalRecorded atomic.Int64
	totalDropped  atomic.Int64
	totalFailed   atomic.Int64
}

// NewRecorder creates a recorder. queueSize and batchSize fall back to
// sensible defaults when non-positive.
func NewRecorder(repo repositories.ClickEventRepository, resolver geo.Resolver, logger *pterm.Logger, queueSize int, batchSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 4096
	}
	if batchSize <= 0 {
		batchSize = 200
	}

	return &Recorder{
		repo:       repo,
		resolver:   resolver,
		logger:     logger,
		queue:      make(chan *models.ClickEvent, queueSize),
		batchSize:  batchSize,
		flushEvery: 2 * time.Second,
		stopCh:     make(chan struct{}),
	}
}

// enrich derives the immutable enrichment fields from the raw signal.
// It is called exactly once per click, at write time.
func (r *Recorder) enrich(click Click) *models.ClickEvent {
	event := &models.ClickEvent{
		URLID:      click.URLID,
		UserID:     click.UserID,
		TeamID:     click.TeamID,
		IPAddress:  click.IPAddress,
		UserAgent:  click.UserAgent,
		RefererURL: click.RefererURL,
	}

	if r.resolver != nil {
		location := r.resolver.Resolve(click.IPAddress)
		event.Country = location.Country
		event.City = location.City
	}

	event.ReferrerSource = referrer.Classify(click.RefererURL)

	ua := useragent.Parse(click.UserAgent)
	event.Browser = ua.Browser
	event.OS = ua.OS
	event.DeviceType = ua.DeviceType

	return event
}

// Record enriches and persists one click synchronously. Exactly one
// insert is attempted; a storage error is returned to the caller, which
// decides whether to retry, log, or drop.
func (r *Recorder) Record(click Click) (*models.ClickEvent, error) {
	event := r.enrich(click)
	if err := r.repo.Create(event); err != nil {
		r.totalFailed.Add(1)
		return nil, err
	}
	r.totalRecorded.Add(1)
	return event, nil
}

// Enqueue hands a click to the background writer and returns
// immediately. When the queue is saturated the click is dropped and
// counted; the redirect must complete regardless.
func (r *Recorder) Enqueue(click Click) {
	event := r.enrich(click)

	select {
	case r.queue <- event:
	default:
		r.totalDropped.Add(1)
		r.logger.Warn("Click queue full, dropping click",
			r.logger.Args("url_id", click.URLID, "dropped_total", r.totalDropped.Load()))
	}
}

// Start launches the background batch writer.
func (r *Recorder) Start() {
	if r.started {
		return
	}
	r.started = true

	r.wg.Add(1)
	go r.flushLoop()
	r.logger.Info("Started click recorder",
		r.logger.Args("queue_size", cap(r.queue), "batch_size", r.batchSize))
}

// Stop drains the queue and stops the writer.
func (r *Recorder) Stop() {
	if !r.started {
		return
	}
	close(r.stopCh)
	r.wg.Wait()
	r.started = false
	r.logger.Info("Stopped click recorder",
		r.logger.Args(
			"recorded", r.totalRecorded.Load(),
			"dropped", r.totalDropped.Load(),
			"failed", r.totalFailed.Load(),
		))
}

// flushLoop batches queued events and writes them out when the batch is
// full or the flush interval elapses.
func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	batch := make([]*models.ClickEvent, 0, r.batchSize)
	flushTimer := time.NewTimer(r.flushEvery)
	defer flushTimer.Stop()

	for {
		select {
		case <-r.stopCh:
			// Drain whatever is still queued before exit
			for {
				select {
				case event := <-r.queue:
					batch = append(batch, event)
					if len(batch) >= r.batchSize {
						r.flush(batch)
						batch = batch[:0]
					}
				default:
					if len(batch) > 0 {
						r.flush(batch)
					}
					return
				}
			}

		case event := <-r.queue:
			batch = append(batch, event)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = batch[:0]
				flushTimer.Reset(r.flushEvery)
			}

		case <-flushTimer.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
			flushTimer.Reset(r.flushEvery)
		}
	}
}

func (r *Recorder) flush(batch []*models.ClickEvent) {
	if err := r.repo.CreateBatch(batch); err != nil {
		// One attempt per click: the batch is not retried.
		r.totalFailed.Add(int64(len(batch)))
		return
	}
	r.totalRecorded.Add(int64(len(batch)))
}

// Pending returns the number of queued, not yet persisted clicks.
func (r *Recorder) Pending() int {
	return len(r.queue)
}
