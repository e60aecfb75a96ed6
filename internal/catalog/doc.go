// Package catalog fetches published version records from app-distribution
// catalogs.
//
// Two catalog shapes are supported:
//   - StructuredClient queries a JSON lookup API (the App Store lookup
//     endpoint) and reads version, link and release notes from the first
//     result.
//   - MarkupClient downloads an HTML details page (Google Play) and walks
//     the document with a swappable set of class selectors.
//
// Both return a Record or a structured error from storecheck/internal/errors
// (http_status, not_found, malformed_response, version_not_found, network).
// Neither client retries, caches, or sets a timeout; bound requests with ctx.
//
// Example usage:
//
//	client := catalog.NewStructuredClient()
//	rec, err := client.Lookup(ctx, "com.example.app", "us")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(rec.Version(), rec.Link())
package catalog
