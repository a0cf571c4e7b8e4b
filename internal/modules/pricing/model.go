// README: Freight request/result definitions for the ANTT-based estimate.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"frete/internal/modules/tariff"
)

var ErrInvalidInput = errors.New("invalid pricing input")

// DeviationTolerance absorbs float noise around the base coefficient (BRL/km).
var DeviationTolerance = decimal.New(1, -3)

type Outcome string

const (
	OutcomeNoTariff     Outcome = "no_tariff"
	OutcomeFixedOnly    Outcome = "fixed_only"
	OutcomeZeroDistance Outcome = "zero_distance"
	OutcomeFull         Outcome = "full"
)

type Direction string

const (
	DirectionNone  Direction = ""
	DirectionAbove Direction = "above_base"
	DirectionBelow Direction = "below_base"
	DirectionAt    Direction = "at_base"
)

const (
	NoteNoTariff        = "no applicable tariff for this date"
	NoteNoDistance      = "distance unavailable; only fixed costs are shown and per-km figures are not computed"
	NoteZeroDistance    = "distance is 0 km; per-km figures are not applicable"
	NoteZeroCoefficient = "base coefficient is zero; deviation percentage reported as 0"
)

type Request struct {
	Distance            decimal.NullDecimal // km; invalid when routing failed
	DifficultySurcharge decimal.Decimal     // BRL
	PerKmSurchargeRate  decimal.Decimal     // BRL/km
	CargoWeightKg       decimal.NullDecimal
}

// Breakdown itemizes the total. The per-km items are invalid when the
// distance is unknown.
type Breakdown struct {
	DistanceCost          decimal.NullDecimal
	FixedFee              decimal.Decimal
	SurchargeDistanceCost decimal.NullDecimal
	DifficultySurcharge   decimal.Decimal
}

// Result carries full-precision figures. Undefined values are invalid NullDecimals.
type Result struct {
	Outcome             Outcome
	Entry               *tariff.Entry
	Breakdown           Breakdown
	TotalCost           decimal.NullDecimal
	EffectiveRate       decimal.NullDecimal
	Deviation           decimal.NullDecimal
	DeviationPct        decimal.NullDecimal
	Direction           Direction
	WeightAdjustedTotal decimal.NullDecimal
	Notes               []string
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
