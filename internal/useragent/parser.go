package useragent

import (
	"regexp"
	"strings"
)

// Info contains the device metadata extracted from a User-Agent string.
type Info struct {
	Browser    string
	OS         string
	DeviceType string // desktop, mobile, bot, unknown
}

var (
	// Browser patterns (order matters - more specific first)
	browserPatterns = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"Edge", regexp.MustCompile(`(?i)Edg/\d`)},
		{"Opera", regexp.MustCompile(`(?i)(?:Opera|OPR)/\d`)},
		{"Chrome", regexp.MustCompile(`(?i)Chrome/\d`)},
		{"Safari", regexp.MustCompile(`(?i)Version/\d+[.\d]*.*Safari`)},
		{"Firefox", regexp.MustCompile(`(?i)Firefox/\d`)},
		{"IE", regexp.MustCompile(`(?i)MSIE\s+\d|Trident/`)},
	}

	// OS patterns
	osPatterns = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"Windows", regexp.MustCompile(`(?i)Windows NT`)},
		{"iOS", regexp.MustCompile(`(?i)(?:iPhone|iPad)`)},
		{"macOS", regexp.MustCompile(`(?i)Mac OS X`)},
		{"Android", regexp.MustCompile(`(?i)Android`)},
		{"ChromeOS", regexp.MustCompile(`(?i)CrOS`)},
		{"Linux", regexp.MustCompile(`(?i)Linux`)},
	}

	botPattern    = regexp.MustCompile(`(?i)bot|crawler|spider|scraper|curl|wget|python|go-http`)
	mobilePattern = regexp.MustCompile(`(?i)mobile|android|iphone|ipad|ipod|blackberry|windows phone`)
)

// Parse extracts browser, OS, and device type from a User-Agent string.
// An empty or unrecognizable value degrades to Unknown/unknown.
func Parse(userAgent string) Info {
	if userAgent == "" {
		return Info{Browser: "Unknown", OS: "Unknown", DeviceType: "unknown"}
	}

	if botPattern.MatchString(userAgent) {
		return Info{Browser: detectBot(userAgent), OS: "Bot", DeviceType: "bot"}
	}

	info := Info{}
	for _, bp := range browserPatterns {
		if bp.pattern.MatchString(userAgent) {
			info.Browser = bp.name
			break
		}
	}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}

	for _, op := range osPatterns {
		if op.pattern.MatchString(userAgent) {
			info.OS = op.name
			break
		}
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	if mobilePattern.MatchString(userAgent) {
		info.DeviceType = "mobile"
	} else {
		info.DeviceType = "desktop"
	}

	return info
}

// detectBot tries to identify the specific bot from User-Agent
func detectBot(userAgent string) string {
	botNames := map[string]string{
		"googlebot":   "Googlebot",
		"bingbot":     "Bingbot",
		"duckduckbot": "DuckDuckBot",
		"yandexbot":   "YandexBot",
		"facebookbot": "Facebookbot",
		"twitterbot":  "Twitterbot",
		"linkedinbot": "LinkedInBot",
		"applebot":    "Applebot",
		"python":      "Python Client",
		"go-http":     "Go HTTP Client",
		"curl":        "cURL",
		"wget":        "Wget",
	}

	lowerUA := strings.ToLower(userAgent)
	for pattern, name := range botNames {
		if strings.Contains(lowerUA, pattern) {
			return name
		}
	}

	return "Bot"
}
