package ai

import "github.com/shopspring/decimal"

const (
	IntentQuote         = "quote"
	IntentClarification = "clarification"
)

// QuoteIntent captures the structured output from the AI model.
type QuoteIntent struct {
	// Intent is "quote" when origin and destination are known, otherwise "clarification".
	Intent string `json:"intent"`

	// Date is the shipment date as dd/mm/yyyy. Nil means today.
	Date *string `json:"date"`

	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`

	// Surcharges and weight are absent when the user did not mention them.
	DifficultySurcharge decimal.NullDecimal `json:"difficulty_surcharge"`
	PerKmSurcharge      decimal.NullDecimal `json:"per_km_surcharge"`
	CargoWeightKg       decimal.NullDecimal `json:"cargo_weight_kg"`

	// Reply is a short answer to the user in Brazilian Portuguese.
	Reply string `json:"reply"`
}

// Missing lists the fields a quote cannot be computed without.
func (q *QuoteIntent) Missing() []string {
	var missing []string
	if q.Origin == nil || *q.Origin == "" {
		missing = append(missing, "origin")
	}
	if q.Destination == nil || *q.Destination == "" {
		missing = append(missing, "destination")
	}
	return missing
}
