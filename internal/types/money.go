// README: Common money value object used by presenters (rounded BRL with pt-BR display).
package types

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const CurrencyBRL = "BRL"

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// BRL rounds amount to centavos.
func BRL(amount decimal.Decimal) Money {
	return Money{Amount: amount.Round(2), Currency: CurrencyBRL}
}

// Display formats the amount as "R$ 1.234,56".
func (m Money) Display() string {
	fixed := m.Amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if m.Amount.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{m.Amount.StringFixed(2), m.Currency, m.Display()})
}
