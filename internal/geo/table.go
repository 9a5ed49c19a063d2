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
	_ "embed"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

//go:embed data/ip_ranges.csv
var embeddedRanges string

type ipRange struct {
	first   netip.Addr
	last    netip.Addr
	country string
	city    string
}

// RangeTable resolves IPs against a static, versioned range-to-location
// table loaded once at construction. The table is immutable after load,
// so lookups need no synchronization. Lookup is a binary search over the
// sorted ranges.
type RangeTable struct {
	version string
	ranges  []ipRange
}

// NewRangeTable loads the table embedded in the binary.
func NewRangeTable(logger *pterm.Logger) *RangeTable {
	table, err := ParseRangeTable(embeddedRanges)
	if err != nil {
		// The embedded table is validated by tests; a parse failure here
		// means a broken build, not a runtime condition.
		logger.WithCaller().Fatal("Embedded geo table is invalid", logger.Args("error", err))
	}
	logger.Info("Loaded embedded geo range table",
		logger.Args("version", table.version, "ranges", len(table.ranges)))
	return table
}

// ParseRangeTable parses CSV content of the form `cidr,country,city`.
// Lines starting with '#' are comments; a `# version:` comment sets the
// table version.
func ParseRangeTable(content string) (*RangeTable, error) {
	table := &RangeTable{}

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if v, ok := strings.CutPrefix(line, "# version:"); ok {
				table.version = strings.TrimSpace(v)
			}
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("geo table line %d: expected cidr,country,city got %q", i+1, line)
		}

		prefix, err := netip.ParsePrefix(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("geo table line %d: %w", i+1, err)
		}

		table.ranges = append(table.ranges, ipRange{
			first:   prefix.Masked().Addr(),
			last:    lastAddr(prefix),
			country: strings.TrimSpace(fields[1]),
			city:    strings.TrimSpace(fields[2]),
		})
	}

	sort.Slice(table.ranges, func(a, b int) bool {
		return table.ranges[a].first.Compare(table.ranges[b].first) < 0
	})

	// The lookup assumes disjoint ranges: with overlaps, the binary
	// search lands on the latest-starting range and an address covered
	// only by an enclosing earlier range would resolve to nothing.
	for i := 1; i < len(table.ranges); i++ {
		prev, cur := table.ranges[i-1], table.ranges[i]
		if cur.first.Compare(prev.last) <= 0 {
			return nil, fmt.Errorf("geo table: range starting at %s overlaps range %s-%s",
				cur.first, prev.first, prev.last)
		}
	}

	return table, nil
}

// Version returns the version string of the loaded table.
func (t *RangeTable) Version() string {
	return t.version
}

// Resolve maps an IP to its location. Malformed input and reserved
// ranges yield the zero Location, never an error.
func (t *RangeTable) Resolve(ip string) Location {
	addr, ok := parseRoutable(ip)
	if !ok {
		return Location{}
	}

	// Find the last range whose start is <= addr, then check its end.
	idx := sort.Search(len(t.ranges), func(i int) bool {
		return t.ranges[i].first.Compare(addr) > 0
	}) - 1

	if idx < 0 {
		return Location{}
	}
	r := t.ranges[idx]
	if addr.Compare(r.last) > 0 {
		return Location{}
	}
	return Location{Country: r.country, City: r.city}
}

// lastAddr returns the highest address contained in the prefix.
func lastAddr(prefix netip.Prefix) netip.Addr {
	addr := prefix.Masked().Addr()
	raw := addr.As16()
	bits := prefix.Bits()
	if addr.Is4() {
		bits += 96
	}
	for b := bits; b < 128; b++ {
		raw[b/8] |= 1 << (7 - b%8)
	}
	out := netip.AddrFrom16(raw)
	if addr.Is4() {
		out = out.Unmap()
	}
	return out
}
