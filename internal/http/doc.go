// Package http provides the HTTP client used by the install pipeline.
//
// This package handles:
//   - Connection pooling for parallel object downloads
//   - GET requests for raw content and JSON documents
//   - Retry with exponential backoff on transport and 5xx errors
//   - Sentinel errors for common 4xx responses
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Raw content
//	body, err := client.Get(ctx, url)
//	defer body.Close()
//
//	// JSON documents
//	var manifest manifest.VersionManifest
//	err = client.GetJSON(ctx, url, &manifest)
package http
