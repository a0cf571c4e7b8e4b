package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultVehicleCapacityKg is the assumed capacity of a full truckload. It is a
// business constant, not something derived from the ANTT table.
var DefaultVehicleCapacityKg = decimal.NewFromInt(30000)

// WeightAdjusted scales a total by the share of the vehicle the cargo uses:
// total * weightKg / capacityKg.
func WeightAdjusted(total, weightKg, capacityKg decimal.Decimal) (decimal.Decimal, error) {
	if !capacityKg.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: vehicle capacity must be positive", ErrInvalidInput)
	}
	if weightKg.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: negative cargo weight", ErrInvalidInput)
	}
	return total.Mul(weightKg).Div(capacityKg), nil
}
