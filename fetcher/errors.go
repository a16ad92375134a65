package fetcher

import (
	"fmt"

	"estate-browser/models"
)

// TransportError reports a request that did not produce a successful HTTP
// response: network failure, cancellation, or a non-2xx status.
type TransportError struct {
	Category   models.Category
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s listings: HTTP %d: %v", e.Category, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s listings: request failed: %v", e.Category, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a successful response whose body is not a valid array
// of listings.
type ParseError struct {
	Category models.Category
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s listings: malformed response: %v", e.Category, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
