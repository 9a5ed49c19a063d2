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

import (
	"net/url"
	"strings"
)

// Source names for clicks that carry no usable referrer.
const (
	Direct  = "Direct"
	Unknown = "Unknown"
)

// knownSources maps referrer domains to display names. Lookup walks the
// hostname from most specific to least specific, so an entry for
// "news.ycombinator.com" wins over one for "ycombinator.com".
var knownSources = map[string]string{
	"facebook.com":         "Facebook",
	"fb.com":               "Facebook",
	"l.facebook.com":       "Facebook",
	"lm.facebook.com":      "Facebook",
	"instagram.com":        "Instagram",
	"l.instagram.com":      "Instagram",
	"twitter.com":          "Twitter",
	"t.co":                 "Twitter",
	"x.com":                "X",
	"linkedin.com":         "LinkedIn",
	"lnkd.in":              "LinkedIn",
	"google.com":           "Google",
	"news.google.com":      "Google News",
	"mail.google.com":      "Gmail",
	"bing.com":             "Bing",
	"duckduckgo.com":       "DuckDuckGo",
	"yahoo.com":            "Yahoo",
	"search.yahoo.com":     "Yahoo Search",
	"baidu.com":            "Baidu",
	"yandex.ru":            "Yandex",
	"yandex.com":           "Yandex",
	"youtube.com":          "YouTube",
	"youtu.be":             "YouTube",
	"reddit.com":           "Reddit",
	"old.reddit.com":       "Reddit",
	"tiktok.com":           "TikTok",
	"pinterest.com":        "Pinterest",
	"snapchat.com":         "Snapchat",
	"whatsapp.com":         "WhatsApp",
	"wa.me":                "WhatsApp",
	"t.me":                 "Telegram",
	"telegram.org":         "Telegram",
	"telegram.me":          "Telegram",
	"news.ycombinator.com": "Hacker News",
	"github.com":           "GitHub",
	"medium.com":           "Medium",
	"slack.com":            "Slack",
	"discord.com":          "Discord",
	"discord.gg":           "Discord",
	"twitch.tv":            "Twitch",
	"threads.net":          "Threads",
	"bsky.app":             "Bluesky",
	"mastodon.social":      "Mastodon",
}

// Classify maps a referrer URL to a human-readable source name.
// Empty input is a direct visit; a referrer whose hostname cannot be
// extracted classifies as Unknown; an unlisted hostname is returned
// verbatim (lowercase, without "www."). Never returns an error.
func Classify(refererURL string) string {
	refererURL = strings.TrimSpace(refererURL)
	if refererURL == "" {
		return Direct
	}

	host := extractHost(refererURL)
	if host == "" {
		return Unknown
	}

	// Most specific match wins: try the full host first, then strip one
	// leading label at a time.
	candidate := host
	for {
		if name, ok := knownSources[candidate]; ok {
			return name
		}
		dot := strings.Index(candidate, ".")
		if dot < 0 {
			break
		}
		candidate = candidate[dot+1:]
	}

	return host
}

// extractHost pulls the hostname out of a referrer string, tolerating
// scheme-less values like "facebook.com/page". Returns "" when no
// plausible hostname exists.
func extractHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		// Scheme-less referrers parse with everything in Path.
		parsed, err = url.Parse("//" + raw)
		if err != nil {
			return ""
		}
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, ".")

	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	// Reject things that only look like hosts (spaces survive url.Parse
	// in opaque positions).
	if strings.ContainsAny(host, " \t") {
		return ""
	}
	return host
}
