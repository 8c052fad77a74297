// Package device derives coarse browser/OS/device-class labels from a
// User-Agent header. Substring matching is enough for session listings;
// anything unrecognized falls back to "Unknown".
package device

import "strings"

type Info struct {
	Browser     string
	OS          string
	DeviceClass string
}

func Parse(userAgent string) Info {
	ua := strings.ToLower(userAgent)

	info := Info{Browser: "Unknown", OS: "Unknown", DeviceClass: "desktop"}
	if ua == "" {
		info.DeviceClass = "unknown"
		return info
	}

	switch {
	case strings.Contains(ua, "edg/"):
		info.Browser = "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		info.Browser = "Opera"
	case strings.Contains(ua, "chrome/"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "safari/"):
		info.Browser = "Safari"
	case strings.Contains(ua, "firefox/"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "curl/"):
		info.Browser = "curl"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		info.OS = "iOS"
	case strings.Contains(ua, "mac os"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		info.DeviceClass = "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		info.DeviceClass = "mobile"
	case strings.Contains(ua, "bot") || strings.Contains(ua, "curl"):
		info.DeviceClass = "bot"
	}

	return info
}
