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
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

// MaxMindResolver resolves IPs against a MaxMind City database file.
// The reader can be swapped at runtime when the file on disk is
// replaced (see Watcher); lookups hold a read lock only.
type MaxMindResolver struct {
	mu     sync.RWMutex
	reader *geoip2.Reader
	path   string
	logger *pterm.Logger
}

// NewMaxMindResolver opens the City database at path.
func NewMaxMindResolver(path string, logger *pterm.Logger) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		logger.WithCaller().Error("Failed to open GeoIP City database",
			logger.Args("path", path, "error", err))
		return nil, err
	}

	logger.Info("Loaded GeoIP City database", logger.Args("path", path))
	return &MaxMindResolver{reader: reader, path: path, logger: logger}, nil
}

// Resolve maps an IP to its location. Lookup failures degrade to the
// zero Location by policy: losing geographic precision must never
// propagate as an error on the click path.
func (m *MaxMindResolver) Resolve(ip string) Location {
	addr, ok := parseRoutable(ip)
	if !ok {
		return Location{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.reader == nil {
		return Location{}
	}

	record, err := m.reader.City(net.IP(addr.AsSlice()))
	if err != nil {
		m.logger.Debug("GeoIP lookup failed", m.logger.Args("ip", ip, "error", err))
		return Location{}
	}

	return Location{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
}

// Reload reopens the database file and swaps the active reader. The
// previous reader is closed after the swap. Stored click rows are never
// recomputed against the new table.
func (m *MaxMindResolver) Reload() error {
	reader, err := geoip2.Open(m.path)
	if err != nil {
		m.logger.WithCaller().Error("Failed to reload GeoIP database",
			m.logger.Args("path", m.path, "error", err))
		return err
	}

	m.mu.Lock()
	old := m.reader
	m.reader = reader
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	m.logger.Info("Reloaded GeoIP City database", m.logger.Args("path", m.path))
	return nil
}

// Close closes the active reader.
func (m *MaxMindResolver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reader == nil {
		return nil
	}
	err := m.reader.Close()
	m.reader = nil
	return err
}
