// README: Base handler utilities (JSON helpers, session header, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"frete/internal/modules/pricing"
	"frete/internal/modules/session"
	"frete/internal/modules/tariff"
	"frete/internal/service"
)

const SessionHeader = "X-Session-ID"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tariff.ErrInvalidDate),
		errors.Is(err, pricing.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, tariff.ErrNoTariffInEffect):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAIUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// sessions loads and saves the caller's session around a request.
type sessions struct {
	store  session.Store
	logger *zap.Logger
}

func (s sessions) load(c *gin.Context) (session.Session, error) {
	sess, err := session.Load(c.Request.Context(), s.store, c.GetHeader(SessionHeader))
	if err != nil {
		return session.Session{}, err
	}
	c.Header(SessionHeader, sess.ID)
	return sess, nil
}

// save never fails the request; a lost session only resets the flag.
func (s sessions) save(c *gin.Context, sess session.Session) {
	if err := s.store.Save(c.Request.Context(), sess); err != nil {
		s.logger.Warn("session save failed", zap.String("session", sess.ID), zap.Error(err))
	}
}
