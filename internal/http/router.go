// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"frete/internal/http/handlers"
	"frete/internal/http/middleware"
	"frete/internal/modules/session"
	"frete/internal/service"
)

type RouterDeps struct {
	Quotes   *service.QuoteService
	Text     *service.TextQuoter // nil disables the free-text endpoint
	Sessions session.Store
	Timeout  time.Duration
	Logger   *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	tariffHandler := handlers.NewTariffHandler(deps.Quotes)
	api.GET("/tariffs", tariffHandler.List)
	api.GET("/tariffs/resolve", tariffHandler.Resolve)

	quoteHandler := handlers.NewQuoteHandler(deps.Quotes, deps.Text, deps.Sessions, deps.Timeout, logger)
	api.POST("/freight/quote", quoteHandler.Quote)
	api.POST("/freight/quote/text", quoteHandler.QuoteText)

	return r
}
