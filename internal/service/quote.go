package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"frete/internal/maps"
	"frete/internal/memo"
	"frete/internal/modules/pricing"
	"frete/internal/modules/session"
	"frete/internal/modules/tariff"
)

var (
	ErrGeocodeFailed        = errors.New("geocoding failed")
	ErrRouteFailed          = errors.New("route lookup failed")
	ErrCollaboratorDisabled = errors.New("route provider disabled for this session")
)

const resolveCacheSize = 4096

// QuoteRequest is what the form (or the AI parser) hands over.
type QuoteRequest struct {
	Date                string
	Origin              string
	Destination         string
	DifficultySurcharge decimal.Decimal
	PerKmSurchargeRate  decimal.Decimal
	CargoWeightKg       decimal.NullDecimal
}

// Leg is a route lookup outcome. Failed lookups keep whatever was resolved
// before the failure.
type Leg struct {
	Origin      *maps.Coordinates   `json:"origin,omitempty"`
	Destination *maps.Coordinates   `json:"destination,omitempty"`
	DistanceKm  decimal.NullDecimal `json:"distance_km"`
	Path        []maps.Coordinates  `json:"path,omitempty"`
}

func (l Leg) markers() []maps.Coordinates {
	var out []maps.Coordinates
	if l.Origin != nil {
		out = append(out, *l.Origin)
	}
	if l.Destination != nil {
		out = append(out, *l.Destination)
	}
	return out
}

type Quote struct {
	Date     time.Time
	Result   pricing.Result
	Leg      Leg
	RouteErr error
	Cached   bool
	View     maps.View
}

type resolution struct {
	entry tariff.Entry
	ok    bool
}

// QuoteService resolves the tariff, looks up the route and prices the trip.
type QuoteService struct {
	table    *tariff.Table
	provider maps.Provider
	pricing  *pricing.Service
	routes   *memo.Memo[Leg]
	resolved *memo.Local[string, resolution]
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuoteService wires the collaborators. provider may be nil, in which case
// every quote is priced on fixed costs only.
func NewQuoteService(table *tariff.Table, provider maps.Provider, pricingSvc *pricing.Service, routeStore memo.Store, routeTTL time.Duration, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		table:    table,
		provider: provider,
		pricing:  pricingSvc,
		routes:   memo.New[Leg](routeStore, "route", routeTTL, logger),
		resolved: memo.NewLocal[string, resolution](resolveCacheSize),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *QuoteService) Table() *tariff.Table { return s.table }

// SetRouteTimeout bounds one shared route lookup (two geocodes and a route).
func (s *QuoteService) SetRouteTimeout(d time.Duration) { s.routes.SetFlightTimeout(d) }

// Resolve returns the entry in force on the given dd/mm/yyyy date.
func (s *QuoteService) Resolve(date string) (tariff.Entry, error) {
	day, err := tariff.ParseDate(date)
	if err != nil {
		return tariff.Entry{}, err
	}
	r := s.resolve(day)
	if !r.ok {
		return tariff.Entry{}, fmt.Errorf("%w: %s", tariff.ErrNoTariffInEffect, day.Format(tariff.DateLayout))
	}
	return r.entry, nil
}

func (s *QuoteService) resolve(day time.Time) resolution {
	key := s.table.Version() + "|" + day.Format(tariff.DateLayout)
	return s.resolved.Get(key, func() resolution {
		e, ok := s.table.Resolve(day)
		return resolution{entry: e, ok: ok}
	})
}

// Quote prices one request. The session is threaded through and returned
// updated; it is returned unchanged when the request itself is rejected.
// Route failures do not fail the quote: they surface as Quote.RouteErr, a
// session log entry and a fixed_only result.
func (s *QuoteService) Quote(ctx context.Context, sess session.Session, req QuoteRequest) (Quote, session.Session, error) {
	day, err := tariff.ParseDate(req.Date)
	if err != nil {
		return Quote{}, sess, err
	}
	if err := pricing.Validate(pricing.Request{
		DifficultySurcharge: req.DifficultySurcharge,
		PerKmSurchargeRate:  req.PerKmSurchargeRate,
		CargoWeightKg:       req.CargoWeightKg,
	}); err != nil {
		return Quote{}, sess, err
	}

	sess = sess.StartLog()
	route, sess := s.lookupRoute(ctx, sess, req.Origin, req.Destination)

	var entry *tariff.Entry
	if r := s.resolve(day); r.ok {
		e := r.entry
		entry = &e
	} else {
		sess = sess.WithLog(session.LevelWarning,
			fmt.Sprintf("no tariff in effect on %s", day.Format(tariff.DateLayout)), s.now())
	}

	result, err := s.pricing.Estimate(entry, pricing.Request{
		Distance:            route.leg.DistanceKm,
		DifficultySurcharge: req.DifficultySurcharge,
		PerKmSurchargeRate:  req.PerKmSurchargeRate,
		CargoWeightKg:       req.CargoWeightKg,
	})
	if err != nil {
		return Quote{}, sess, err
	}

	s.logger.Info("quote computed",
		zap.String("date", day.Format(tariff.DateLayout)),
		zap.String("outcome", string(result.Outcome)),
		zap.Bool("route_cached", route.cached),
		zap.Error(route.err),
	)

	return Quote{
		Date:     day,
		Result:   result,
		Leg:      route.leg,
		RouteErr: route.err,
		Cached:   route.cached,
		View:     viewFor(route.leg),
	}, sess, nil
}

func viewFor(leg Leg) maps.View {
	v := maps.ViewFor(leg.markers(), leg.DistanceKm)
	v.Path = leg.Path
	return v
}

type routeLookup struct {
	leg    Leg
	cached bool
	err    error
}

func (s *QuoteService) lookupRoute(ctx context.Context, sess session.Session, origin, destination string) (routeLookup, session.Session) {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		sess = sess.WithLog(session.LevelWarning, "origin and destination are required to compute the distance", s.now())
		return routeLookup{}, sess
	}
	if s.provider == nil {
		sess = sess.WithLog(session.LevelWarning, "route lookup skipped: no route provider configured", s.now())
		return routeLookup{err: ErrCollaboratorDisabled}, sess
	}
	if !sess.CollaboratorEnabled {
		sess = sess.WithLog(session.LevelWarning, "route lookup skipped: the route provider is disabled for this session", s.now())
		return routeLookup{err: ErrCollaboratorDisabled}, sess
	}

	sess = sess.WithLog(session.LevelInfo, fmt.Sprintf("calculating route %s -> %s", origin, destination), s.now())
	leg, cached, err := s.routes.Do(ctx, memo.Key(origin, destination), func(ctx context.Context) (Leg, error) {
		return s.fetchLeg(ctx, origin, destination)
	})

	if leg.Origin != nil {
		sess = sess.WithLog(session.LevelSuccess, fmt.Sprintf("origin located at %s", leg.Origin), s.now())
	}
	if leg.Destination != nil {
		sess = sess.WithLog(session.LevelSuccess, fmt.Sprintf("destination located at %s", leg.Destination), s.now())
	}

	switch {
	case err == nil:
		msg := fmt.Sprintf("route found: %s km", leg.DistanceKm.Decimal.StringFixed(1))
		if cached {
			msg += " (cached)"
		}
		sess = sess.WithLog(session.LevelSuccess, msg, s.now())
	case errors.Is(err, maps.ErrRateLimited):
		s.logger.Warn("route provider rate limited", zap.String("session", sess.ID), zap.Error(err))
		sess = sess.Disable("route provider quota exhausted; distance lookups are disabled for this session", s.now())
	default:
		s.logger.Warn("route lookup failed", zap.String("session", sess.ID), zap.Error(err))
		sess = sess.WithLog(session.LevelError, describeRouteError(err), s.now())
	}
	return routeLookup{leg: leg, cached: cached, err: err}, sess
}

func (s *QuoteService) fetchLeg(ctx context.Context, origin, destination string) (Leg, error) {
	var leg Leg

	o, err := s.provider.Geocode(ctx, origin)
	if err != nil {
		return leg, fmt.Errorf("%w: origin %q: %w", ErrGeocodeFailed, origin, err)
	}
	leg.Origin = &o

	d, err := s.provider.Geocode(ctx, destination)
	if err != nil {
		return leg, fmt.Errorf("%w: destination %q: %w", ErrGeocodeFailed, destination, err)
	}
	leg.Destination = &d

	info, err := s.provider.Route(ctx, o, d)
	if err != nil {
		return leg, fmt.Errorf("%w: %w", ErrRouteFailed, err)
	}
	leg.DistanceKm = decimal.NewNullDecimal(info.DistanceKm)
	leg.Path = info.Path
	return leg, nil
}

func describeRouteError(err error) string {
	var what string
	switch {
	case errors.Is(err, ErrGeocodeFailed):
		what = "could not locate the place"
	case errors.Is(err, ErrRouteFailed):
		what = "could not compute a driving route"
	default:
		what = "route lookup failed"
	}
	switch {
	case errors.Is(err, maps.ErrNotFound):
		return what + ": no match found"
	case errors.Is(err, maps.ErrTransient):
		return what + ": the route provider is temporarily unavailable"
	default:
		return what + ": " + err.Error()
	}
}
