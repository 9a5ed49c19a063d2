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
package geo

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// Watcher reloads a MaxMindResolver when its database file is replaced
// on disk (periodic GeoIP updates ship a whole new file). Events are
// debounced because an atomic replace typically fires several of them.
type Watcher struct {
	watcher  *fsnotify.Watcher
	resolver *MaxMindResolver
	file     string
	logger   *pterm.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

const reloadDebounce = 2 * time.Second

// NewWatcher watches the directory containing the resolver's database
// file. Watching the directory instead of the file survives rename-based
// replacement.
func NewWatcher(resolver *MaxMindResolver, logger *pterm.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithCaller().Error("Failed to create GeoIP file watcher", logger.Args("error", err))
		return nil, err
	}

	dir := filepath.Dir(resolver.path)
	if err := fsw.Add(dir); err != nil {
		logger.WithCaller().Error("Failed to watch GeoIP database directory",
			logger.Args("dir", dir, "error", err))
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		resolver: resolver,
		file:     filepath.Base(resolver.path),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	w.wg.Add(1)
	go w.eventLoop()

	logger.Info("Watching GeoIP database for updates", logger.Args("dir", dir, "file", w.file))
	return w, nil
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	var reload *time.Timer
	defer func() {
		if reload != nil {
			reload.Stop()
		}
	}()

	for {
		var reloadCh <-chan time.Time
		if reload != nil {
			reloadCh = reload.C
		}

		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.logger.Warn("GeoIP watcher events channel closed")
				return
			}
			if filepath.Base(event.Name) != w.file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("GeoIP database changed on disk",
				w.logger.Args("file", event.Name, "op", event.Op.String()))
			if reload == nil {
				reload = time.NewTimer(reloadDebounce)
			} else {
				reload.Reset(reloadDebounce)
			}

		case <-reloadCh:
			reload = nil
			if err := w.resolver.Reload(); err != nil {
				w.logger.Warn("GeoIP reload failed, keeping previous table",
					w.logger.Args("error", err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithCaller().Error("GeoIP watcher error", w.logger.Args("error", err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	w.wg.Wait()
	return w.watcher.Close()
}
