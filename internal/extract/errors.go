package extract

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL  = errors.New("invalid article URL")
	ErrFetch       = errors.New("failed to fetch article")
	ErrDisallowed  = errors.New("disallowed by robots.txt")
	ErrTooShort    = errors.New("extracted content too short")
	ErrNoArticles  = errors.New("no articles could be extracted")
	ErrBodyTooBig  = errors.New("response body too large")
	ErrUnsupported = errors.New("unsupported content type")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Status)
}

// Failure records a URL that could not be added to a collection.
type Failure struct {
	URL string
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.URL, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
