package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "storecheck/internal/errors"
)

// DefaultLookupEndpoint is the App Store lookup API.
const DefaultLookupEndpoint = "https://itunes.apple.com/lookup"

// lookupResponse mirrors the lookup API body. Result fields stay raw so that
// wrong-typed values can be told apart from absent ones.
type lookupResponse struct {
	ResultCount int                          `json:"resultCount"`
	Results     *[]map[string]json.RawMessage `json:"results"`
}

// StructuredClient queries a JSON lookup catalog.
type StructuredClient struct {
	settings
	now func() time.Time
}

// NewStructuredClient creates a client for the App Store lookup API.
func NewStructuredClient(opts ...Option) *StructuredClient {
	return &StructuredClient{
		settings: newSettings(DefaultLookupEndpoint, opts),
		now:      time.Now,
	}
}

// Fetch implements Client.
func (c *StructuredClient) Fetch(ctx context.Context, q Query) (Record, error) {
	return c.Lookup(ctx, q.AppID, q.Country)
}

// Lookup fetches the record for appID, optionally scoped to a two-letter
// country code.
func (c *StructuredClient) Lookup(ctx context.Context, appID, country string) (Record, error) {
	lookupURL, err := c.lookupURL(appID, country)
	if err != nil {
		return Record{}, err
	}

	body, err := c.get(ctx, lookupURL, "application/json")
	if err != nil {
		return Record{}, err
	}

	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Record{}, apperrors.New(apperrors.CodeMalformedResponse,
			fmt.Sprintf("decode lookup response: %v", err), err)
	}
	if resp.Results == nil {
		return Record{}, apperrors.New(apperrors.CodeMalformedResponse, "lookup response has no results field", nil)
	}
	if len(*resp.Results) == 0 {
		return Record{}, apperrors.New(apperrors.CodeNotFound,
			fmt.Sprintf("no catalog entry for %q", appID), nil)
	}

	first := (*resp.Results)[0]
	version, ok := stringField(first, "version")
	if !ok || strings.TrimSpace(version) == "" {
		return Record{}, apperrors.New(apperrors.CodeMalformedResponse, "lookup result has no string version", nil)
	}
	link, ok := stringField(first, "trackViewUrl")
	if !ok || strings.TrimSpace(link) == "" {
		return Record{}, apperrors.New(apperrors.CodeMalformedResponse, "lookup result has no string trackViewUrl", nil)
	}

	rec := NewRecord(version, link)
	if notes, ok := stringField(first, "releaseNotes"); ok {
		rec = rec.WithReleaseNotes(notes)
	}
	return rec, nil
}

func (c *StructuredClient) lookupURL(appID, country string) (string, error) {
	if strings.TrimSpace(appID) == "" {
		return "", apperrors.New(apperrors.CodeConfigurationError, "app id is required", nil)
	}
	country, err := normalizeCountry(country)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", apperrors.New(apperrors.CodeConfigurationError,
			fmt.Sprintf("invalid lookup endpoint %q", c.endpoint), err)
	}
	params := u.Query()
	params.Set("bundleId", appID)
	if country != "" {
		params.Set("country", country)
	}
	// Cache buster; CDNs in front of the lookup API serve stale results otherwise.
	params.Set("_", strconv.FormatInt(c.now().UnixNano(), 10))
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// normalizeCountry lower-cases a two-letter region code. Empty is allowed.
func normalizeCountry(country string) (string, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return "", nil
	}
	if len(country) != 2 || !isASCIILetter(country[0]) || !isASCIILetter(country[1]) {
		return "", apperrors.New(apperrors.CodeConfigurationError,
			fmt.Sprintf("country %q is not a two-letter code", country), nil)
	}
	return strings.ToLower(country), nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// stringField reports the value of key when it is present and a JSON string.
func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	// json.Unmarshal leaves s untouched for null.
	if strings.TrimSpace(string(raw)) == "null" {
		return "", false
	}
	return s, true
}
