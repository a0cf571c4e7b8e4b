// README: Freight quote handlers (form fields and free text).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"frete/internal/modules/session"
	"frete/internal/service"
)

type QuoteHandler struct {
	quotes   *service.QuoteService
	text     *service.TextQuoter
	sessions sessions
	timeout  time.Duration
	logger   *zap.Logger
}

// NewQuoteHandler creates the handler. text may be nil when no AI provider is
// configured.
func NewQuoteHandler(quotes *service.QuoteService, text *service.TextQuoter, store session.Store, timeout time.Duration, logger *zap.Logger) *QuoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteHandler{
		quotes:   quotes,
		text:     text,
		sessions: sessions{store: store, logger: logger},
		timeout:  timeout,
		logger:   logger,
	}
}

type quoteReq struct {
	Date                string              `json:"date"`
	Origin              string              `json:"origin"`
	Destination         string              `json:"destination"`
	DifficultySurcharge decimal.Decimal     `json:"difficulty_surcharge"`
	PerKmSurcharge      decimal.Decimal     `json:"per_km_surcharge"`
	CargoWeightKg       decimal.NullDecimal `json:"cargo_weight_kg"`
}

// Quote handles POST /api/freight/quote.
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		writeError(c, http.StatusBadRequest, "missing date")
		return
	}

	sess, err := h.sessions.load(c)
	if err != nil {
		h.logger.Error("session load failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	q, sess, err := h.quotes.Quote(ctx, sess, service.QuoteRequest{
		Date:                req.Date,
		Origin:              req.Origin,
		Destination:         req.Destination,
		DifficultySurcharge: req.DifficultySurcharge,
		PerKmSurchargeRate:  req.PerKmSurcharge,
		CargoWeightKg:       req.CargoWeightKg,
	})
	h.sessions.save(c, sess)
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, presentQuote(q, sess))
}

type textQuoteReq struct {
	Message string `json:"message"`
}

type textQuoteResponse struct {
	quoteResponse
	Reply string `json:"reply"`
}

// QuoteText handles POST /api/freight/quote/text.
func (h *QuoteHandler) QuoteText(c *gin.Context) {
	if h.text == nil {
		writeQuoteError(c, service.ErrAIUnavailable)
		return
	}

	var req textQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}

	sess, err := h.sessions.load(c)
	if err != nil {
		h.logger.Error("session load failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	q, intent, sess, err := h.text.QuoteText(ctx, sess, req.Message)
	h.sessions.save(c, sess)
	if err != nil {
		var incomplete *service.IncompleteIntentError
		if errors.As(err, &incomplete) {
			writeJSON(c, http.StatusUnprocessableEntity, map[string]any{
				"error":   err.Error(),
				"missing": incomplete.Missing,
				"reply":   incomplete.Reply,
			})
			return
		}
		h.logger.Warn("text quote failed", zap.Error(err))
		writeQuoteError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, textQuoteResponse{quoteResponse: presentQuote(q, sess), Reply: intent.Reply})
}

func (h *QuoteHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}
