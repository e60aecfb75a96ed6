package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	apperrors "storecheck/internal/errors"
)

// Default configuration values.
const (
	DefaultUserAgent = "storecheck"
	// MaxBodyBytes caps how much of a catalog response is read.
	MaxBodyBytes = 4 << 20
)

// Record is the normalized result of one successful catalog query. It is a
// value type; callers receive their own copy.
type Record struct {
	version  string
	link     string
	notes    string
	hasNotes bool
}

// NewRecord builds a record without release notes.
func NewRecord(version, link string) Record {
	return Record{version: version, link: link}
}

// WithReleaseNotes returns a copy of r carrying notes.
func (r Record) WithReleaseNotes(notes string) Record {
	r.notes = notes
	r.hasNotes = true
	return r
}

// Version returns the version string exactly as published by the catalog.
func (r Record) Version() string { return r.version }

// Link returns the URL the user should follow to obtain the update.
func (r Record) Link() string { return r.link }

// ReleaseNotes returns the release notes and whether the catalog supplied any.
func (r Record) ReleaseNotes() (string, bool) { return r.notes, r.hasNotes }

// Query identifies the application to look up.
type Query struct {
	AppID string
	// Country is a two-letter region code. Only the structured catalog uses it.
	Country string
}

// Client fetches the published record for one application.
type Client interface {
	Fetch(ctx context.Context, q Query) (Record, error)
}

type settings struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
	selectors  Selectors
}

// Option configures a catalog client.
type Option func(*settings)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithEndpoint overrides the catalog URL (scheme, host and path).
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.endpoint = endpoint
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

// WithSelectors swaps the markup selectors. Ignored by the structured client.
func WithSelectors(sel Selectors) Option {
	return func(s *settings) {
		s.selectors = sel
	}
}

func newSettings(endpoint string, opts []Option) settings {
	s := settings{
		endpoint: endpoint,
		// No client timeout: callers bound the request through ctx.
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
		selectors:  DefaultSelectors(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// get issues a GET request and returns the (size-capped) body of a 2xx response.
func (s *settings) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNetwork, fmt.Sprintf("network request failed: %v", err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.HTTPStatus(resp.StatusCode, fmt.Sprintf("catalog returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, apperrors.New(apperrors.CodeNetwork, fmt.Sprintf("read response: %v", err), err)
	}
	if len(body) > MaxBodyBytes {
		return nil, apperrors.New(apperrors.CodeMalformedResponse,
			fmt.Sprintf("response exceeds %d bytes", MaxBodyBytes), nil)
	}
	return body, nil
}
