package parser

import "strings"

// ParseUserAgent returns a coarse OS and browser name. Mobile platforms are
// checked first because their user agents also mention Linux or Mac OS.
func ParseUserAgent(ua string) (os, browser string) {
	uaLower := strings.ToLower(ua)

	switch {
	case strings.Contains(uaLower, "android"):
		os = "Android"
	case strings.Contains(uaLower, "iphone"), strings.Contains(uaLower, "ipad"):
		os = "iOS"
	case strings.Contains(uaLower, "windows"):
		os = "Windows"
	case strings.Contains(uaLower, "mac os"):
		os = "macOS"
	case strings.Contains(uaLower, "linux"):
		os = "Linux"
	default:
		os = "Unknown"
	}

	switch {
	case strings.Contains(uaLower, "edg"):
		browser = "Edge"
	case strings.Contains(uaLower, "samsungbrowser"):
		browser = "Samsung Internet"
	case strings.Contains(uaLower, "chrome"), strings.Contains(uaLower, "crios"):
		browser = "Chrome"
	case strings.Contains(uaLower, "firefox"), strings.Contains(uaLower, "fxios"):
		browser = "Firefox"
	case strings.Contains(uaLower, "safari"):
		browser = "Safari"
	default:
		browser = "Unknown"
	}

	return os, browser
}

// ParseDeviceType classifies a user agent as mobile, tablet, desktop or bot.
func ParseDeviceType(ua string) string {
	uaLower := strings.ToLower(ua)

	switch {
	case uaLower == "":
		return "unknown"
	case strings.Contains(uaLower, "bot"), strings.Contains(uaLower, "crawler"), strings.Contains(uaLower, "spider"):
		return "bot"
	case strings.Contains(uaLower, "ipad"), strings.Contains(uaLower, "tablet"),
		strings.Contains(uaLower, "android") && !strings.Contains(uaLower, "mobile"):
		return "tablet"
	case strings.Contains(uaLower, "mobile"), strings.Contains(uaLower, "iphone"), strings.Contains(uaLower, "android"):
		return "mobile"
	}
	return "desktop"
}
