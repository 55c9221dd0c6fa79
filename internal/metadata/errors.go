// file: internal/metadata/errors.go
// version: 1.0.0
// guid: 0c6b1f3e-2d7a-4e59-9a1b-5f8e3c2d7a10

package metadata

import "errors"

// Error kinds produced while talking to the catalog. Callers classify with errors.Is.
var (
	// ErrTransport covers network failures, timeouts and non-200 HTTP statuses.
	ErrTransport = errors.New("transport error")
	// ErrMalformedResponse means the body was not valid JSON or had an unexpected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUpstreamFailure means the envelope code was not 200 or data was missing.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrDateParse means a chapter publish timestamp could not be parsed.
	ErrDateParse = errors.New("unparseable publish date")
	// ErrNoResults is returned when identify produced nothing to resolve a cover from.
	ErrNoResults = errors.New("no results")
	// ErrNoCover means the detail payload carried no cover URL or the image was empty.
	ErrNoCover = errors.New("no cover available")
)
