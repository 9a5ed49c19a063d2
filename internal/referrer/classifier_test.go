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
package referrer

import "testing"

func TestClassify_EmptyIsDirect(t *testing.T) {
	if got := Classify(""); got != Direct {
		t.Errorf("Expected %q for empty referrer, got %q", Direct, got)
	}
	if got := Classify("   "); got != Direct {
		t.Errorf("Expected %q for whitespace referrer, got %q", Direct, got)
	}
}

func TestClassify_KnownSources(t *testing.T) {
	cases := map[string]string{
		"https://www.facebook.com/some/page":          "Facebook",
		"https://l.facebook.com/l.php?u=x":            "Facebook",
		"https://t.co/AbCdEf":                         "Twitter",
		"https://www.google.com/search?q=linklift":    "Google",
		"https://news.ycombinator.com/item?id=123":    "Hacker News",
		"https://github.com/someone/repo":             "GitHub",
		"https://duckduckgo.com/?q=test":              "DuckDuckGo",
		"https://old.reddit.com/r/golang":             "Reddit",
		"https://youtu.be/dQw4w9WgXcQ":                "YouTube",
	}

	for input, want := range cases {
		if got := Classify(input); got != want {
			t.Errorf("Classify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestClassify_MostSpecificWins(t *testing.T) {
	// mail.google.com has its own entry and must not fall through to the
	// google.com one.
	if got := Classify("https://mail.google.com/mail/u/0/"); got != "Gmail" {
		t.Errorf("Expected Gmail, got %q", got)
	}
	// An unlisted google subdomain falls through to the google.com entry.
	if got := Classify("https://docs.google.com/document/d/x"); got != "Google" {
		t.Errorf("Expected Google for unlisted subdomain, got %q", got)
	}
}

func TestClassify_UnlistedHostReturnedVerbatim(t *testing.T) {
	if got := Classify("https://blog.example.org/post/42"); got != "blog.example.org" {
		t.Errorf("Expected verbatim host, got %q", got)
	}
	// www. prefix and case are normalized.
	if got := Classify("https://WWW.Example.ORG/"); got != "example.org" {
		t.Errorf("Expected normalized host, got %q", got)
	}
}

func TestClassify_SchemelessReferrer(t *testing.T) {
	if got := Classify("facebook.com/page"); got != "Facebook" {
		t.Errorf("Expected Facebook for scheme-less referrer, got %q", got)
	}
}

func TestClassify_MalformedIsUnknown(t *testing.T) {
	cases := []string{
		"not a url at all",
		"://///",
		"justoneword",
	}
	for _, input := range cases {
		if got := Classify(input); got != Unknown {
			t.Errorf("Classify(%q) = %q, want %q", input, got, Unknown)
		}
	}
}
