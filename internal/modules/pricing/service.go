// README: Freight calculator; composes tariff, distance and surcharges into an itemized estimate.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"frete/internal/modules/tariff"
)

var hundred = decimal.NewFromInt(100)

// Calculate is the pure freight formula. It never divides by zero and never
// errors: every expected condition is an Outcome.
func Calculate(entry *tariff.Entry, req Request) Result {
	if entry == nil {
		return Result{Outcome: OutcomeNoTariff, Notes: []string{NoteNoTariff}}
	}

	res := Result{
		Entry: entry,
		Breakdown: Breakdown{
			FixedFee:            entry.FixedFee,
			DifficultySurcharge: req.DifficultySurcharge,
		},
	}

	if !req.Distance.Valid {
		res.Outcome = OutcomeFixedOnly
		res.Notes = []string{NoteNoDistance}
		return res
	}

	distance := req.Distance.Decimal
	if distance.IsZero() {
		res.Outcome = OutcomeZeroDistance
		res.Breakdown.DistanceCost = valid(decimal.Zero)
		res.Breakdown.SurchargeDistanceCost = valid(decimal.Zero)
		res.TotalCost = valid(entry.FixedFee.Add(req.DifficultySurcharge))
		res.Notes = []string{NoteZeroDistance}
		return res
	}

	res.Outcome = OutcomeFull
	distanceCost := entry.Coefficient.Mul(distance)
	surchargeCost := req.PerKmSurchargeRate.Mul(distance)
	res.Breakdown.DistanceCost = valid(distanceCost)
	res.Breakdown.SurchargeDistanceCost = valid(surchargeCost)

	total := distanceCost.
		Add(entry.FixedFee).
		Add(surchargeCost).
		Add(req.DifficultySurcharge)
	rate := total.Div(distance)
	deviation := rate.Sub(entry.Coefficient)

	res.TotalCost = valid(total)
	res.EffectiveRate = valid(rate)
	res.Deviation = valid(deviation)
	if entry.Coefficient.IsPositive() {
		res.DeviationPct = valid(deviation.Div(entry.Coefficient).Mul(hundred))
	} else {
		res.Notes = append(res.Notes, NoteZeroCoefficient)
	}
	res.Direction = directionOf(deviation)
	return res
}

func directionOf(deviation decimal.Decimal) Direction {
	switch {
	case deviation.GreaterThan(DeviationTolerance):
		return DirectionAbove
	case deviation.LessThan(DeviationTolerance.Neg()):
		return DirectionBelow
	default:
		return DirectionAt
	}
}

// Service validates requests and applies the optional weight strategy on top
// of Calculate.
type Service struct {
	capacityKg decimal.Decimal
}

// NewService takes the vehicle capacity used by the weight strategy. A zero
// capacity disables the strategy.
func NewService(capacityKg decimal.Decimal) *Service {
	return &Service{capacityKg: capacityKg}
}

func (s *Service) Estimate(entry *tariff.Entry, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	res := Calculate(entry, req)
	if !req.CargoWeightKg.Valid || !res.TotalCost.Valid || !s.capacityKg.IsPositive() {
		return res, nil
	}
	adjusted, err := WeightAdjusted(res.TotalCost.Decimal, req.CargoWeightKg.Decimal, s.capacityKg)
	if err != nil {
		return Result{}, err
	}
	res.WeightAdjustedTotal = valid(adjusted)
	return res, nil
}

// Validate rejects negative inputs.
func Validate(req Request) error {
	switch {
	case req.Distance.Valid && req.Distance.Decimal.IsNegative():
		return fmt.Errorf("%w: negative distance", ErrInvalidInput)
	case req.DifficultySurcharge.IsNegative():
		return fmt.Errorf("%w: negative difficulty surcharge", ErrInvalidInput)
	case req.PerKmSurchargeRate.IsNegative():
		return fmt.Errorf("%w: negative per-km surcharge", ErrInvalidInput)
	case req.CargoWeightKg.Valid && req.CargoWeightKg.Decimal.IsNegative():
		return fmt.Errorf("%w: negative cargo weight", ErrInvalidInput)
	}
	return nil
}
