package analytics

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

// ParsedUserAgent holds the fields extracted from a User-Agent header.
// Nil fields mean the information was not present or not parseable.
type ParsedUserAgent struct {
	OS             *string
	DeviceType     *string
	Browser        *string
	BrowserVersion *string
}

// ParseUserAgent extracts OS, device type, browser, and browser version
// from a raw User-Agent string.
func ParseUserAgent(userAgent string) ParsedUserAgent {
	if userAgent == "" {
		return ParsedUserAgent{}
	}

	parsed := ua.Parse(userAgent)

	var parsedUA ParsedUserAgent

	if parsed.OS != "" {
		os := parsed.OS
		if parsed.OSVersion != "" {
			os = parsed.OS + " " + parsed.OSVersion
		}
		parsedUA.OS = &os
	}

	deviceType := inferDeviceType(parsed)
	parsedUA.DeviceType = &deviceType

	if parsed.Name != "" {
		browser := parsed.Name
		parsedUA.Browser = &browser
	}
	if parsed.Version != "" {
		version := parsed.Version
		parsedUA.BrowserVersion = &version
	}

	return parsedUA
}

// inferDeviceType normalizes the parser's device classification.
// When the parser gives an explicit type it wins; otherwise the OS
// family decides, defaulting to Desktop when that is unknown too.
func inferDeviceType(parsed ua.UserAgent) string {
	switch {
	case parsed.Mobile:
		return "Mobile"
	case parsed.Tablet:
		return "Tablet"
	case parsed.Desktop:
		return "Desktop"
	case parsed.Bot:
		return "Bot"
	}

	return deviceTypeFromOS(parsed.OS)
}

func deviceTypeFromOS(os string) string {
	switch {
	case strings.Contains(os, "Windows"), strings.Contains(os, "Mac"), strings.Contains(os, "Linux"):
		return "Desktop"
	case strings.Contains(os, "iOS"), strings.Contains(os, "Android"):
		// Could be mobile or tablet; default guess is Mobile
		return "Mobile"
	default:
		return "Desktop"
	}
}
