package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNoMarkup      = errors.New("no markup obtained")
	ErrNoFetcher     = errors.New("no fetcher available for request")
	ErrCacheMiss     = errors.New("markup cache miss")
)

// FetchError wraps errors that occur during fetching. It is the only
// failure the scraper surfaces to its caller.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur while persisting rows.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Fault classifies an extraction problem that was recovered locally.
// Faults are logged, never returned.
type Fault int

const (
	FaultMissingRoot Fault = iota + 1
	FaultMissingField
	FaultMalformedSize
	FaultMalformedPricing
)

func (f Fault) String() string {
	switch f {
	case FaultMissingRoot:
		return "missing_root"
	case FaultMissingField:
		return "missing_field"
	case FaultMalformedSize:
		return "malformed_size"
	case FaultMalformedPricing:
		return "malformed_pricing"
	default:
		return "unknown"
	}
}
