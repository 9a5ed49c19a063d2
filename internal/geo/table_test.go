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
	"testing"

	"github.com/pterm/pterm"
)

func TestEmbeddedTable_Loads(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	table := NewRangeTable(logger)

	if table.Version() == "" {
		t.Error("Expected embedded table to carry a version")
	}
	if len(table.ranges) == 0 {
		t.Fatal("Expected embedded table to contain ranges")
	}
}

func TestRangeTable_ResolveKnownRanges(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	table := NewRangeTable(logger)

	cases := map[string]Location{
		"1.1.1.1":         {Country: "AU", City: "Sydney"},
		"8.8.8.8":         {Country: "US", City: "Mountain View"},
		"81.2.69.160":     {Country: "GB", City: "London"},
		"89.160.20.128":   {Country: "SE", City: "Linkoping"},
		"2001:4860:4860::8888": {Country: "US", City: "Mountain View"},
	}

	for ip, want := range cases {
		got := table.Resolve(ip)
		if got != want {
			t.Errorf("Resolve(%q) = %+v, want %+v", ip, got, want)
		}
		if !got.Resolved() {
			t.Errorf("Expected %q to resolve", ip)
		}
	}
}

func TestRangeTable_ResolveBoundaries(t *testing.T) {
	table, err := ParseRangeTable("# version: test\n81.2.69.0/24,GB,London\n")
	if err != nil {
		t.Fatalf("ParseRangeTable failed: %v", err)
	}

	if got := table.Resolve("81.2.69.0"); got.Country != "GB" {
		t.Errorf("Expected first address of range to resolve, got %+v", got)
	}
	if got := table.Resolve("81.2.69.255"); got.Country != "GB" {
		t.Errorf("Expected last address of range to resolve, got %+v", got)
	}
	if got := table.Resolve("81.2.70.0"); got.Resolved() {
		t.Errorf("Expected address past range end to be unresolved, got %+v", got)
	}
	if got := table.Resolve("81.2.68.255"); got.Resolved() {
		t.Errorf("Expected address before range start to be unresolved, got %+v", got)
	}
}

func TestRangeTable_NonRoutableAddresses(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	table := NewRangeTable(logger)

	cases := []string{
		"127.0.0.1",
		"::1",
		"10.0.0.5",
		"172.16.44.2",
		"192.168.1.100",
		"0.0.0.0",
		"169.254.10.10",
		"224.0.0.1",
		"fe80::1",
	}

	for _, ip := range cases {
		if got := table.Resolve(ip); got.Resolved() {
			t.Errorf("Expected %q to be unresolved, got %+v", ip, got)
		}
	}
}

func TestRangeTable_MalformedInput(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	table := NewRangeTable(logger)

	cases := []string{
		"",
		"not-an-ip",
		"999.1.2.3",
		"1.2.3",
		"1.2.3.4.5",
	}

	for _, ip := range cases {
		if got := table.Resolve(ip); got.Resolved() {
			t.Errorf("Expected malformed %q to be unresolved, got %+v", ip, got)
		}
	}
}

func TestRangeTable_MappedIPv4(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	table := NewRangeTable(logger)

	// IPv4-mapped IPv6 form of a covered IPv4 address.
	got := table.Resolve("::ffff:8.8.8.8")
	if got.Country != "US" {
		t.Errorf("Expected mapped IPv4 to resolve like its IPv4 form, got %+v", got)
	}
}

func TestParseRangeTable_RejectsBadLines(t *testing.T) {
	if _, err := ParseRangeTable("81.2.69.0/24,GB\n"); err == nil {
		t.Error("Expected error for missing city column")
	}
	if _, err := ParseRangeTable("not-a-cidr,GB,London\n"); err == nil {
		t.Error("Expected error for invalid CIDR")
	}
}

func TestParseRangeTable_RejectsOverlappingRanges(t *testing.T) {
	// A /24 nested inside a /8.
	if _, err := ParseRangeTable("1.0.0.0/8,US,Somewhere\n1.1.1.0/24,AU,Sydney\n"); err == nil {
		t.Error("Expected error for nested ranges")
	}
	// Identical range listed twice.
	if _, err := ParseRangeTable("1.1.1.0/24,AU,Sydney\n1.1.1.0/24,AU,Melbourne\n"); err == nil {
		t.Error("Expected error for duplicate range")
	}
	// Partial overlap across a boundary.
	if _, err := ParseRangeTable("1.1.0.0/23,AU,Sydney\n1.1.1.0/24,AU,Melbourne\n"); err == nil {
		t.Error("Expected error for partially overlapping ranges")
	}
	// Adjacent but disjoint ranges are fine.
	if _, err := ParseRangeTable("1.1.1.0/24,AU,Sydney\n1.1.2.0/24,AU,Melbourne\n"); err != nil {
		t.Errorf("Expected adjacent disjoint ranges to parse, got %v", err)
	}
}

func TestParseRangeTable_VersionComment(t *testing.T) {
	table, err := ParseRangeTable("# version: 2026.08\n# a comment\n\n1.1.1.0/24,AU,Sydney\n")
	if err != nil {
		t.Fatalf("ParseRangeTable failed: %v", err)
	}
	if table.Version() != "2026.08" {
		t.Errorf("Expected version 2026.08, got %q", table.Version())
	}
}
