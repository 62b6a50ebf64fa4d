package http

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoURL is returned when a metadata response carries no download URL.
var ErrNoURL = errors.New("http: metadata response has no URL")

// ErrIdleTimeout is returned when a response body delivers no data for
// longer than the client timeout.
var ErrIdleTimeout = errors.New("http: no data received within timeout")

// Kind classifies a FetchError.
type Kind int

const (
	// KindStatus means the server answered with a status other than 200.
	KindStatus Kind = iota

	// KindContentType means the response had an unexpected content type.
	KindContentType
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindContentType:
		return "content type"
	default:
		return "unknown"
	}
}

// FetchError is returned by Resolve and Fetch when a response is rejected.
//
// For KindStatus, Detail holds the raw response body. For KindContentType,
// ContentType holds the media type that was received and Detail the one that
// was expected.
type FetchError struct {
	Kind        Kind
	URL         string
	StatusCode  int
	Status      string
	ContentType string
	Detail      string
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("url couldn't be loaded: %s: %s\n%s", e.URL, e.Status, e.Detail)
	case KindContentType:
		return fmt.Sprintf("invalid content type: %s (want %s) from %s", e.ContentType, e.Detail, e.URL)
	default:
		return fmt.Sprintf("fetch %s failed", e.URL)
	}
}
