package feed

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a feed read failed.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindStatus  ErrorKind = "status"
	KindDecode  ErrorKind = "decode"
)

// FetchError is returned by readers when the feed could not be read.
type FetchError struct {
	Feed       string
	Endpoint   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s feed from %s: unexpected status %d", e.Feed, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s feed from %s: %s: %v", e.Feed, e.Endpoint, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err wraps a *FetchError and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
