package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	apperrors "storecheck/internal/errors"

	"golang.org/x/net/html"
)

const (
	// DefaultDetailsEndpoint is the Google Play details page.
	DefaultDetailsEndpoint = "https://play.google.com/store/apps/details"
	// detailsLanguage pins the page language; the selector labels are English.
	detailsLanguage = "en"
)

// MarkupClient scrapes an HTML details page.
type MarkupClient struct {
	settings
}

// NewMarkupClient creates a client for the Google Play details page.
func NewMarkupClient(opts ...Option) *MarkupClient {
	return &MarkupClient{settings: newSettings(DefaultDetailsEndpoint, opts)}
}

// Fetch implements Client. The country is not used by this catalog.
func (c *MarkupClient) Fetch(ctx context.Context, q Query) (Record, error) {
	return c.Lookup(ctx, q.AppID)
}

// Lookup fetches and parses the details page for appID. The record's link
// is the details page URL itself.
func (c *MarkupClient) Lookup(ctx context.Context, appID string) (Record, error) {
	if err := c.selectors.Validate(); err != nil {
		return Record{}, err
	}
	detailsURL, err := c.detailsURL(appID)
	if err != nil {
		return Record{}, err
	}

	body, err := c.get(ctx, detailsURL, "text/html")
	if err != nil {
		return Record{}, err
	}
	return ParseDetailsPage(bytes.NewReader(body), detailsURL, c.selectors)
}

func (c *MarkupClient) detailsURL(appID string) (string, error) {
	if strings.TrimSpace(appID) == "" {
		return "", apperrors.New(apperrors.CodeConfigurationError, "app id is required", nil)
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", apperrors.New(apperrors.CodeConfigurationError,
			fmt.Sprintf("invalid details endpoint %q", c.endpoint), err)
	}
	params := u.Query()
	params.Set("id", appID)
	params.Set("hl", detailsLanguage)
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// ParseDetailsPage extracts a record from a details page. The version row is
// required and its absence is a version_not_found error; release notes are
// optional and any missing step simply leaves them out.
func ParseDetailsPage(r io.Reader, link string, sel Selectors) (Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Record{}, apperrors.New(apperrors.CodeMalformedResponse,
			fmt.Sprintf("parse details page: %v", err), err)
	}

	version, ok := findVersion(doc, sel)
	if !ok {
		return Record{}, apperrors.New(apperrors.CodeVersionNotFound,
			fmt.Sprintf("no %q row on details page", sel.VersionLabel), nil)
	}

	rec := NewRecord(version, link)
	if notes, ok := findReleaseNotes(doc, sel); ok {
		rec = rec.WithReleaseNotes(notes)
	}
	return rec, nil
}

func findVersion(doc *html.Node, sel Selectors) (string, bool) {
	for _, row := range elementsByClass(doc, sel.InfoRowClass) {
		label := firstByClass(row, sel.InfoLabelClass)
		if label == nil || strings.TrimSpace(textContent(label)) != sel.VersionLabel {
			continue
		}
		value := firstByClass(row, sel.InfoValueClass)
		version := strings.TrimSpace(textContent(value))
		if version == "" {
			return "", false
		}
		return version, true
	}
	return "", false
}

func findReleaseNotes(doc *html.Node, sel Selectors) (string, bool) {
	for _, section := range elementsByClass(doc, sel.SectionClass) {
		heading := firstByClass(section, sel.SectionHeadingClass)
		if heading == nil || strings.TrimSpace(textContent(heading)) != sel.NotesHeading {
			continue
		}
		outer := firstByClass(section, sel.NotesOuterClass)
		inner := firstByClass(outer, sel.NotesInnerClass)
		if inner == nil {
			return "", false
		}
		return strings.TrimSpace(textContent(inner)), true
	}
	return "", false
}
