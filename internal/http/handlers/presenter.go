// README: Presentation rounding for quotes: money 2 digits, rates 3, percentages 1.
package handlers

import (
	"github.com/shopspring/decimal"

	"frete/internal/maps"
	"frete/internal/modules/pricing"
	"frete/internal/modules/session"
	"frete/internal/modules/tariff"
	"frete/internal/service"
	"frete/internal/types"
)

type tariffView struct {
	Label         string      `json:"label"`
	EffectiveDate string      `json:"effective_date"`
	Coefficient   string      `json:"coefficient"`
	FixedFee      types.Money `json:"fixed_fee"`
}

type breakdownView struct {
	DistanceCost          *types.Money `json:"distance_cost"`
	FixedFee              types.Money  `json:"fixed_fee"`
	SurchargeDistanceCost *types.Money `json:"surcharge_distance_cost"`
	DifficultySurcharge   types.Money  `json:"difficulty_surcharge"`
}

type sessionView struct {
	ID                  string             `json:"id"`
	CollaboratorEnabled bool               `json:"collaborator_enabled"`
	RateLimitReported   bool               `json:"rate_limit_reported"`
	Log                 []session.LogEntry `json:"log"`
}

type quoteResponse struct {
	Date                string        `json:"date"`
	Outcome             string        `json:"outcome"`
	Tariff              *tariffView   `json:"tariff"`
	DistanceKm          *string       `json:"distance_km"`
	RouteCached         bool          `json:"route_cached"`
	RouteError          string        `json:"route_error,omitempty"`
	Breakdown           breakdownView `json:"breakdown"`
	TotalCost           *types.Money  `json:"total_cost"`
	EffectiveRate       *string       `json:"effective_rate"`
	Deviation           *string       `json:"deviation"`
	DeviationPct        *string       `json:"deviation_pct"`
	Direction           string        `json:"direction,omitempty"`
	WeightAdjustedTotal *types.Money  `json:"weight_adjusted_total"`
	Notes               []string      `json:"notes"`
	Map                 maps.View     `json:"map"`
	Session             sessionView   `json:"session"`
}

func newTariffView(e tariff.Entry) *tariffView {
	return &tariffView{
		Label:         e.Label,
		EffectiveDate: e.EffectiveDate.Format(tariff.DateLayout),
		Coefficient:   e.Coefficient.StringFixed(3),
		FixedFee:      types.BRL(e.FixedFee),
	}
}

func newSessionView(s session.Session) sessionView {
	log := s.Log
	if log == nil {
		log = []session.LogEntry{}
	}
	return sessionView{
		ID:                  s.ID,
		CollaboratorEnabled: s.CollaboratorEnabled,
		RateLimitReported:   s.RateLimitReported,
		Log:                 log,
	}
}

func presentQuote(q service.Quote, sess session.Session) quoteResponse {
	r := q.Result
	resp := quoteResponse{
		Date:        q.Date.Format(tariff.DateLayout),
		Outcome:     string(r.Outcome),
		DistanceKm:  fixed(q.Leg.DistanceKm, 1),
		RouteCached: q.Cached,
		Breakdown: breakdownView{
			DistanceCost:          money(r.Breakdown.DistanceCost),
			FixedFee:              types.BRL(r.Breakdown.FixedFee),
			SurchargeDistanceCost: money(r.Breakdown.SurchargeDistanceCost),
			DifficultySurcharge:   types.BRL(r.Breakdown.DifficultySurcharge),
		},
		TotalCost:           money(r.TotalCost),
		EffectiveRate:       fixed(r.EffectiveRate, 3),
		Deviation:           fixed(r.Deviation, 3),
		DeviationPct:        fixed(r.DeviationPct, 1),
		Direction:           string(r.Direction),
		WeightAdjustedTotal: money(r.WeightAdjustedTotal),
		Notes:               r.Notes,
		Map:                 q.View,
		Session:             newSessionView(sess),
	}
	if r.Entry != nil {
		resp.Tariff = newTariffView(*r.Entry)
	}
	if q.RouteErr != nil {
		resp.RouteError = q.RouteErr.Error()
	}
	// A zero coefficient leaves the percentage undefined; it is shown as 0
	// next to the caveat note.
	if r.Outcome == pricing.OutcomeFull && !r.DeviationPct.Valid {
		zero := decimal.Zero.StringFixed(1)
		resp.DeviationPct = &zero
	}
	if resp.Notes == nil {
		resp.Notes = []string{}
	}
	return resp
}

func fixed(d decimal.NullDecimal, places int32) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(places)
	return &s
}

func money(d decimal.NullDecimal) *types.Money {
	if !d.Valid {
		return nil
	}
	m := types.BRL(d.Decimal)
	return &m
}
