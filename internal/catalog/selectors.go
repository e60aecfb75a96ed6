package catalog

import (
	"fmt"
	"strings"

	apperrors "storecheck/internal/errors"
)

// Selectors names the elements the markup client walks on a details page.
// The class names are chosen by the catalog provider and change without
// notice; update them here (or inject new ones with WithSelectors) when the
// page layout moves.
type Selectors struct {
	// InfoRowClass marks each row of the "additional information" block.
	InfoRowClass string
	// InfoLabelClass marks the label inside an info row.
	InfoLabelClass string
	// InfoValueClass marks the value inside an info row.
	InfoValueClass string
	// VersionLabel is the label text of the row holding the current version.
	VersionLabel string

	// SectionClass marks each content section on the page.
	SectionClass string
	// SectionHeadingClass marks a section's heading.
	SectionHeadingClass string
	// NotesHeading is the heading text of the release notes section.
	NotesHeading string
	// NotesOuterClass and NotesInnerClass are the two nested elements that
	// lead from the section to the notes text.
	NotesOuterClass string
	NotesInnerClass string
}

// DefaultSelectors returns the selectors matching the Google Play details page.
func DefaultSelectors() Selectors {
	return Selectors{
		InfoRowClass:        "hAynWe",
		InfoLabelClass:      "BgcNfc",
		InfoValueClass:      "htlgb",
		VersionLabel:        "Current Version",
		SectionClass:        "W4P4ne",
		SectionHeadingClass: "wSaTQd",
		NotesHeading:        "What's New",
		NotesOuterClass:     "PHBdkd",
		NotesInnerClass:     "DWPxHb",
	}
}

// Validate reports the first empty selector.
func (s Selectors) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"InfoRowClass", s.InfoRowClass},
		{"InfoLabelClass", s.InfoLabelClass},
		{"InfoValueClass", s.InfoValueClass},
		{"VersionLabel", s.VersionLabel},
		{"SectionClass", s.SectionClass},
		{"SectionHeadingClass", s.SectionHeadingClass},
		{"NotesHeading", s.NotesHeading},
		{"NotesOuterClass", s.NotesOuterClass},
		{"NotesInnerClass", s.NotesInnerClass},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperrors.New(apperrors.CodeConfigurationError,
				fmt.Sprintf("selector %s is empty", f.name), nil)
		}
	}
	return nil
}
