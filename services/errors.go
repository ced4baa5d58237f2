// backend/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures that send a fetch down the stale/fallback chain.
type ErrorKind int

const (
	KindUnsupportedYear ErrorKind = iota + 1
	KindTransport
	KindExtraction
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedYear:
		return "unsupported_year"
	case KindTransport:
		return "transport"
	case KindExtraction:
		return "extraction"
	default:
		return "unknown"
	}
}

// FetchError is returned by the fetch stage of the pipeline. Only errors of
// this type are recovered with stale or fallback data.
type FetchError struct {
	Kind  ErrorKind
	Year  int
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("bcn %s failure for year %d at %s: %v", e.Kind, e.Year, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrMinistryNotFound is returned when a snapshot has no rollup for the requested code.
var ErrMinistryNotFound = errors.New("ministry not found")

// ErrNoRealData is returned for operations that need a snapshot scraped from BCN.
var ErrNoRealData = errors.New("no real data available for year")

// IsKind reports whether err is a FetchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
