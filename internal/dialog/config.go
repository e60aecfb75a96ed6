package dialog

import (
	"fmt"
	"strings"

	apperrors "storecheck/internal/errors"
	"storecheck/internal/resolver"
)

// Default dialog strings.
const (
	DefaultTitle        = "Update Available"
	DefaultUpdateLabel  = "Update"
	DefaultDismissLabel = "Maybe Later"
	defaultTextFormat   = "You can now update this app from %s to %s"
)

// Style selects the dialog's visual language.
type Style int

const (
	// StyleFollowPlatform picks Cupertino for the App Store catalog and
	// Material for everything else.
	StyleFollowPlatform Style = iota
	// StyleMaterial renders a square frame with upper-case, right-aligned actions.
	StyleMaterial
	// StyleCupertino renders a rounded frame with centered title and actions.
	StyleCupertino
)

// String returns the configuration name of the style.
func (s Style) String() string {
	switch s {
	case StyleMaterial:
		return "material"
	case StyleCupertino:
		return "cupertino"
	default:
		return "platform"
	}
}

// ParseStyle maps a configuration value to a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "platform", "follow-platform", "auto":
		return StyleFollowPlatform, nil
	case "material", "android":
		return StyleMaterial, nil
	case "cupertino", "ios":
		return StyleCupertino, nil
	default:
		return StyleFollowPlatform, apperrors.New(apperrors.CodeConfigurationError,
			fmt.Sprintf("unknown dialog style %q", s), nil)
	}
}

// Resolve returns the concrete style to draw for platform.
func (s Style) Resolve(platform resolver.Platform) Style {
	if s != StyleFollowPlatform {
		return s
	}
	if platform == resolver.PlatformStructured {
		return StyleCupertino
	}
	return StyleMaterial
}

// Config is the presentation bundle handed to the presenter.
type Config struct {
	Title string
	// Text replaces the default body. Empty means the default
	// "You can now update this app from <local> to <store>".
	Text           string
	UpdateLabel    string
	DismissLabel   string
	AllowDismissal bool
	Style          Style
	// Platform resolves StyleFollowPlatform.
	Platform resolver.Platform
}

// DefaultConfig returns the default strings with dismissal allowed.
func DefaultConfig() Config {
	return Config{
		Title:          DefaultTitle,
		UpdateLabel:    DefaultUpdateLabel,
		DismissLabel:   DefaultDismissLabel,
		AllowDismissal: true,
	}
}

// withDefaults fills empty strings. AllowDismissal is left as set.
func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Title) == "" {
		c.Title = DefaultTitle
	}
	if strings.TrimSpace(c.UpdateLabel) == "" {
		c.UpdateLabel = DefaultUpdateLabel
	}
	if strings.TrimSpace(c.DismissLabel) == "" {
		c.DismissLabel = DefaultDismissLabel
	}
	return c
}

// BodyText returns the configured text or the default sentence for s.
func (c Config) BodyText(s resolver.Status) string {
	if strings.TrimSpace(c.Text) != "" {
		return c.Text
	}
	return fmt.Sprintf(defaultTextFormat, s.LocalVersion(), s.StoreVersion())
}
