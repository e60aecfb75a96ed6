package catalog

import (
	"net/http"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// rewriteTransport rewrites request URLs for testing so the default
// catalog endpoints land on an httptest server.
type rewriteTransport struct {
	base      http.RoundTripper
	targetURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(t.targetURL, "http://")
	return t.base.RoundTrip(req)
}

func rewritingClient(targetURL string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:      http.DefaultTransport,
			targetURL: targetURL,
		},
	}
}

func mustParseHTML(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}
