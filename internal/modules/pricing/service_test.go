// README: Freight calculator tests (outcomes, itemization, deviation, weight strategy).
package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frete/internal/modules/tariff"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func km(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func entry(coef, fee string) *tariff.Entry {
	return &tariff.Entry{
		Label:         "Portaria SUROC nº 27/2024",
		EffectiveDate: time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC),
		Coefficient:   d(coef),
		FixedFee:      d(fee),
	}
}

func TestCalculate_FullRoute(t *testing.T) {
	res := Calculate(entry("7.486", "675.05"), Request{
		Distance:            km("500"),
		DifficultySurcharge: d("50"),
		PerKmSurchargeRate:  d("0.1"),
	})

	require.Equal(t, OutcomeFull, res.Outcome)
	require.True(t, res.Breakdown.DistanceCost.Valid)
	assert.True(t, d("3743").Equal(res.Breakdown.DistanceCost.Decimal), res.Breakdown.DistanceCost.Decimal.String())
	assert.True(t, d("50").Equal(res.Breakdown.SurchargeDistanceCost.Decimal))
	assert.True(t, d("675.05").Equal(res.Breakdown.FixedFee))
	assert.True(t, d("50").Equal(res.Breakdown.DifficultySurcharge))

	require.True(t, res.TotalCost.Valid)
	assert.True(t, d("4518.05").Equal(res.TotalCost.Decimal), res.TotalCost.Decimal.String())
	require.True(t, res.EffectiveRate.Valid)
	assert.True(t, d("9.0361").Equal(res.EffectiveRate.Decimal), res.EffectiveRate.Decimal.String())
	require.True(t, res.Deviation.Valid)
	assert.True(t, d("1.5501").Equal(res.Deviation.Decimal))

	require.True(t, res.DeviationPct.Valid)
	pct, _ := res.DeviationPct.Decimal.Float64()
	assert.InDelta(t, 20.71, pct, 0.02)
	assert.Equal(t, "20.7", res.DeviationPct.Decimal.StringFixed(1))
	assert.Equal(t, DirectionAbove, res.Direction)
	assert.Empty(t, res.Notes)
	assert.False(t, res.WeightAdjustedTotal.Valid)
}

func TestCalculate_ZeroDistance(t *testing.T) {
	res := Calculate(entry("7.486", "675.05"), Request{
		Distance:            km("0"),
		DifficultySurcharge: d("50"),
		PerKmSurchargeRate:  d("0.1"),
	})

	require.Equal(t, OutcomeZeroDistance, res.Outcome)
	require.True(t, res.TotalCost.Valid)
	assert.True(t, d("725.05").Equal(res.TotalCost.Decimal))
	require.True(t, res.Breakdown.DistanceCost.Valid)
	assert.True(t, res.Breakdown.DistanceCost.Decimal.IsZero())
	assert.False(t, res.EffectiveRate.Valid)
	assert.False(t, res.Deviation.Valid)
	assert.False(t, res.DeviationPct.Valid)
	assert.Equal(t, DirectionNone, res.Direction)
	assert.Contains(t, res.Notes, NoteZeroDistance)
}

func TestCalculate_DistanceAbsent(t *testing.T) {
	res := Calculate(entry("7.486", "675.05"), Request{
		DifficultySurcharge: d("120"),
		PerKmSurchargeRate:  d("0.3"),
	})

	require.Equal(t, OutcomeFixedOnly, res.Outcome)
	assert.True(t, d("675.05").Equal(res.Breakdown.FixedFee))
	assert.True(t, d("120").Equal(res.Breakdown.DifficultySurcharge))
	assert.False(t, res.Breakdown.DistanceCost.Valid)
	assert.False(t, res.Breakdown.SurchargeDistanceCost.Valid)
	assert.False(t, res.TotalCost.Valid)
	assert.False(t, res.EffectiveRate.Valid)
	assert.False(t, res.DeviationPct.Valid)
	assert.Contains(t, res.Notes, NoteNoDistance)
}

func TestCalculate_NoTariff(t *testing.T) {
	res := Calculate(nil, Request{Distance: km("300")})

	assert.Equal(t, OutcomeNoTariff, res.Outcome)
	assert.Nil(t, res.Entry)
	assert.False(t, res.TotalCost.Valid)
	assert.Equal(t, []string{NoteNoTariff}, res.Notes)
}

func TestCalculate_ZeroCoefficient(t *testing.T) {
	res := Calculate(entry("0", "100"), Request{Distance: km("100")})

	require.Equal(t, OutcomeFull, res.Outcome)
	assert.True(t, d("100").Equal(res.TotalCost.Decimal))
	assert.True(t, d("1").Equal(res.EffectiveRate.Decimal))
	assert.False(t, res.DeviationPct.Valid)
	assert.Equal(t, DirectionAbove, res.Direction)
	assert.Contains(t, res.Notes, NoteZeroCoefficient)
}

func TestCalculate_Direction(t *testing.T) {
	tests := []struct {
		name  string
		coef  string
		fee   string
		dist  string
		extra string
		want  Direction
	}{
		{name: "exact base", coef: "5", fee: "0", dist: "100", want: DirectionAt},
		{name: "within tolerance", coef: "5", fee: "0.05", dist: "100", want: DirectionAt},
		{name: "just past tolerance", coef: "5", fee: "0.2", dist: "100", want: DirectionAbove},
		{name: "fee drives it above", coef: "5", fee: "500", dist: "100", want: DirectionAbove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Calculate(entry(tt.coef, tt.fee), Request{Distance: km(tt.dist)})
			assert.Equal(t, tt.want, res.Direction)
		})
	}
}

// Non-negative inputs can never land below the base; the branch is still
// reachable through directionOf.
func TestDirectionOf(t *testing.T) {
	assert.Equal(t, DirectionBelow, directionOf(d("-0.5")))
	assert.Equal(t, DirectionAt, directionOf(d("-0.001")))
	assert.Equal(t, DirectionAt, directionOf(d("0.001")))
	assert.Equal(t, DirectionAbove, directionOf(d("0.0011")))
}

func TestCalculate_FullPrecision(t *testing.T) {
	res := Calculate(entry("7.486", "675.05"), Request{Distance: km("333")})

	// 3167.888 / 333 does not terminate; the calculator must not round to cents.
	assert.True(t, d("3167.888").Equal(res.TotalCost.Decimal))
	assert.Greater(t, len(res.EffectiveRate.Decimal.String()), 8)
}

func TestService_Estimate(t *testing.T) {
	s := NewService(DefaultVehicleCapacityKg)
	tests := []struct {
		name      string
		req       Request
		wantErr   bool
		wantAdj   string
		wantNoAdj bool
	}{
		{
			name:      "no weight keeps plain total",
			req:       Request{Distance: km("500"), DifficultySurcharge: d("50"), PerKmSurchargeRate: d("0.1")},
			wantNoAdj: true,
		},
		{
			name:    "half load halves the total",
			req:     Request{Distance: km("500"), DifficultySurcharge: d("50"), PerKmSurchargeRate: d("0.1"), CargoWeightKg: km("15000")},
			wantAdj: "2259.025",
		},
		{
			name:      "weight ignored without total",
			req:       Request{CargoWeightKg: km("15000")},
			wantNoAdj: true,
		},
		{name: "negative distance", req: Request{Distance: km("-1")}, wantErr: true},
		{name: "negative difficulty", req: Request{Distance: km("1"), DifficultySurcharge: d("-1")}, wantErr: true},
		{name: "negative rate", req: Request{Distance: km("1"), PerKmSurchargeRate: d("-0.1")}, wantErr: true},
		{name: "negative weight", req: Request{Distance: km("1"), CargoWeightKg: km("-10")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Estimate(entry("7.486", "675.05"), tt.req)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			if tt.wantNoAdj {
				assert.False(t, res.WeightAdjustedTotal.Valid)
				return
			}
			require.True(t, res.WeightAdjustedTotal.Valid)
			assert.True(t, d(tt.wantAdj).Equal(res.WeightAdjustedTotal.Decimal), res.WeightAdjustedTotal.Decimal.String())
		})
	}
}

func TestService_EstimateCapacityDisabled(t *testing.T) {
	s := NewService(decimal.Zero)
	res, err := s.Estimate(entry("7.486", "675.05"), Request{Distance: km("10"), CargoWeightKg: km("100")})
	require.NoError(t, err)
	assert.False(t, res.WeightAdjustedTotal.Valid)
}

func TestWeightAdjusted(t *testing.T) {
	got, err := WeightAdjusted(d("1000"), d("30000"), DefaultVehicleCapacityKg)
	require.NoError(t, err)
	assert.True(t, d("1000").Equal(got))

	got, err = WeightAdjusted(d("1000"), d("45000"), DefaultVehicleCapacityKg)
	require.NoError(t, err)
	assert.True(t, d("1500").Equal(got), "overload scales past the full-load total")

	_, err = WeightAdjusted(d("1000"), d("10"), decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidInput)
}
