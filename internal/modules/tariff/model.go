// README: Tariff entry and row definitions for the ANTT minimum freight floor.
package tariff

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day/month/year form used by requests and by the published tables.
const DateLayout = "02/01/2006"

// parseLayout accepts both zero-padded and bare day/month numbers.
const parseLayout = "2/1/2006"

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrNoTariffInEffect = errors.New("no tariff in effect for date")
	ErrMalformedTable   = errors.New("malformed tariff table")
)

// Entry is one regulatory version of the minimum freight floor.
type Entry struct {
	Label         string
	EffectiveDate time.Time
	Coefficient   decimal.Decimal // BRL per km
	FixedFee      decimal.Decimal // loading/unloading, BRL
}

// Row is a raw table row as published (effective date still a string).
type Row struct {
	Label         string
	EffectiveDate string
	Coefficient   decimal.Decimal
	FixedFee      decimal.Decimal
}
