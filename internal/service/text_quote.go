package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"frete/internal/ai"
	"frete/internal/modules/session"
	"frete/internal/modules/tariff"
)

var (
	ErrAIUnavailable    = errors.New("ai provider not configured")
	ErrIntentIncomplete = errors.New("message does not describe a complete quote")
)

// IncompleteIntentError carries the model's clarification reply.
type IncompleteIntentError struct {
	Missing []string
	Reply   string
}

func (e *IncompleteIntentError) Error() string {
	return fmt.Sprintf("%v: missing %s", ErrIntentIncomplete, strings.Join(e.Missing, ", "))
}

func (e *IncompleteIntentError) Unwrap() error { return ErrIntentIncomplete }

// TextQuoter turns a free-text message into a quote via an IntentParser.
type TextQuoter struct {
	parser ai.IntentParser
	quotes *QuoteService
	loc    *time.Location
}

// NewTextQuoter creates a TextQuoter. Relative dates are anchored in Brasília time.
func NewTextQuoter(parser ai.IntentParser, quotes *QuoteService) (*TextQuoter, error) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return nil, fmt.Errorf("failed to load America/Sao_Paulo location: %w", err)
	}
	return &TextQuoter{parser: parser, quotes: quotes, loc: loc}, nil
}

// QuoteText parses message and prices it. The parsed intent is returned even
// when the quote itself fails.
func (t *TextQuoter) QuoteText(ctx context.Context, sess session.Session, message string) (Quote, *ai.QuoteIntent, session.Session, error) {
	if t == nil || t.parser == nil {
		return Quote{}, nil, sess, ErrAIUnavailable
	}

	now := t.quotes.now().In(t.loc)
	intent, err := t.parser.ParseQuoteIntent(ctx, message, now)
	if err != nil {
		return Quote{}, nil, sess, err
	}
	if missing := intent.Missing(); len(missing) > 0 {
		return Quote{}, intent, sess, &IncompleteIntentError{Missing: missing, Reply: intent.Reply}
	}

	req := IntentRequest(intent, now)
	q, sess, err := t.quotes.Quote(ctx, sess, req)
	return q, intent, sess, err
}

// IntentRequest fills a QuoteRequest from the intent, defaulting the date to
// today and absent surcharges to zero.
func IntentRequest(intent *ai.QuoteIntent, today time.Time) QuoteRequest {
	req := QuoteRequest{
		Date:                today.Format(tariff.DateLayout),
		DifficultySurcharge: orZero(intent.DifficultySurcharge),
		PerKmSurchargeRate:  orZero(intent.PerKmSurcharge),
		CargoWeightKg:       intent.CargoWeightKg,
	}
	if intent.Date != nil && *intent.Date != "" {
		req.Date = *intent.Date
	}
	if intent.Origin != nil {
		req.Origin = *intent.Origin
	}
	if intent.Destination != nil {
		req.Destination = *intent.Destination
	}
	return req
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
