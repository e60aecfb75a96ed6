package resolver

import (
	"fmt"
	"strings"

	apperrors "storecheck/internal/errors"
)

// Platform selects which catalog the resolver queries.
type Platform int

const (
	// PlatformUnsupported has no catalog; resolution is skipped.
	PlatformUnsupported Platform = iota
	// PlatformStructured uses the JSON lookup catalog (App Store).
	PlatformStructured
	// PlatformMarkup uses the HTML details page catalog (Google Play).
	PlatformMarkup
)

// String returns the canonical configuration name of the platform.
func (p Platform) String() string {
	switch p {
	case PlatformStructured:
		return "structured"
	case PlatformMarkup:
		return "markup"
	default:
		return "unsupported"
	}
}

// ParsePlatform maps a configuration value to a Platform. Empty input is
// PlatformUnsupported without error.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "ios", "appstore", "app-store":
		return PlatformStructured, nil
	case "markup", "android", "play", "google-play":
		return PlatformMarkup, nil
	case "", "unsupported", "none":
		return PlatformUnsupported, nil
	default:
		return PlatformUnsupported, apperrors.New(apperrors.CodeConfigurationError,
			fmt.Sprintf("unknown platform %q", s), nil)
	}
}
