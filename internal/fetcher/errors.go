package fetcher

import (
	"errors"
	"fmt"
)

// ErrTooManyRedirects is returned when the redirect hop cap is exceeded.
var ErrTooManyRedirects = errors.New("too many redirects")

// FetchError reports a response with a non-success HTTP status.
type FetchError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.URL, e.Status)
}

// TransportError wraps a network level failure (DNS, connection reset, read error).
type TransportError struct {
	Err error
	URL string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
