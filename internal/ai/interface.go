package ai

import (
	"context"
	"time"
)

// IntentParser turns a free-text freight request into structured quote fields.
// This interface allows for swapping different AI providers in the future.
type IntentParser interface {
	// ParseQuoteIntent extracts the quote fields from message. today anchors
	// relative dates such as "amanhã" or "semana que vem".
	ParseQuoteIntent(ctx context.Context, message string, today time.Time) (*QuoteIntent, error)
}
