// Package device classifies the browser environment that reported an event.
package device

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// Unknown is reported for anything the heuristics cannot classify
const Unknown = "Unknown"

// Device classes
const (
	TypeDesktop = "desktop"
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
)

var versionPattern = regexp.MustCompile(`(?i)(chrome|firefox|safari|edge)/(\d+)`)

// Environment is what the browser reports about itself
type Environment struct {
	UserAgent      string
	ScreenWidth    int
	ScreenHeight   int
	ViewportWidth  int
	ViewportHeight int
	Language       string
	AcceptLanguage string
	Timezone       string
}

// Info is the classified device
type Info struct {
	Browser          string `json:"browser"`
	BrowserVersion   string `json:"browser_version"`
	OperatingSystem  string `json:"operating_system"`
	DeviceType       string `json:"device_type"`
	ScreenResolution string `json:"screen_resolution,omitempty"`
	ViewportSize     string `json:"viewport_size,omitempty"`
	Language         string `json:"language,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
}

// Inspect classifies env. It never fails; unmatched values fall back to
// Unknown or desktop.
func Inspect(env Environment) Info {
	return Info{
		Browser:          Browser(env.UserAgent),
		BrowserVersion:   BrowserVersion(env.UserAgent),
		OperatingSystem:  OperatingSystem(env.UserAgent),
		DeviceType:       DeviceType(env.UserAgent),
		ScreenResolution: dimensions(env.ScreenWidth, env.ScreenHeight),
		ViewportSize:     dimensions(env.ViewportWidth, env.ViewportHeight),
		Language:         Language(env.Language, env.AcceptLanguage),
		Timezone:         env.Timezone,
	}
}

// Browser returns the browser family. Chrome is checked first, so
// Chromium-based Edge reports as Chrome.
func Browser(ua string) string {
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	default:
		return Unknown
	}
}

// BrowserVersion returns the major version of the first known browser token
func BrowserVersion(ua string) string {
	m := versionPattern.FindStringSubmatch(ua)
	if m == nil {
		return Unknown
	}
	return m[2]
}

// OperatingSystem returns the OS family
func OperatingSystem(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iOS"):
		return "iOS"
	default:
		return Unknown
	}
}

// DeviceType returns desktop, mobile or tablet
func DeviceType(ua string) string {
	switch {
	case strings.Contains(ua, "Mobile"):
		return TypeMobile
	case strings.Contains(ua, "Tablet"), strings.Contains(ua, "iPad"):
		return TypeTablet
	default:
		return TypeDesktop
	}
}

// Language prefers the explicit value and otherwise picks the highest
// weighted Accept-Language tag
func Language(explicit, acceptLanguage string) string {
	if explicit != "" {
		return explicit
	}
	if acceptLanguage == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}

func dimensions(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", w, h)
}
