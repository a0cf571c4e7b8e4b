package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("no match found")
	ErrRateLimited = errors.New("provider quota exhausted")
	ErrTransient   = errors.New("provider failure")
)

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type RouteInfo struct {
	DistanceKm decimal.Decimal
	Path       []Coordinates
}

// Provider resolves place names and driving routes. Every error it returns
// matches exactly one of ErrNotFound, ErrRateLimited or ErrTransient.
type Provider interface {
	Geocode(ctx context.Context, place string) (Coordinates, error)
	Route(ctx context.Context, origin, destination Coordinates) (RouteInfo, error)
}

// Error records the failed operation and its kind.
type Error struct {
	Op     string // "geocode" or "route"
	Target string
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Target, e.Kind)
	}
	return fmt.Sprintf("%s %q: %v: %v", e.Op, e.Target, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, target string, kind, err error) *Error {
	return &Error{Op: op, Target: target, Kind: kind, Err: err}
}

// classify maps a Google status error to a kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrTransient
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "OVER_QUERY_LIMIT"),
		strings.Contains(msg, "OVER_DAILY_LIMIT"),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "429"):
		return ErrRateLimited
	case strings.Contains(msg, "ZERO_RESULTS"),
		strings.Contains(msg, "NOT_FOUND"):
		return ErrNotFound
	default:
		return ErrTransient
	}
}
