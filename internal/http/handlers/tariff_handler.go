// README: Tariff table listing and date resolution.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"frete/internal/service"
)

type TariffHandler struct {
	quotes *service.QuoteService
}

func NewTariffHandler(quotes *service.QuoteService) *TariffHandler {
	return &TariffHandler{quotes: quotes}
}

// List handles GET /api/tariffs, newest first.
func (h *TariffHandler) List(c *gin.Context) {
	table := h.quotes.Table()
	entries := table.Entries()
	out := make([]*tariffView, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, newTariffView(entries[i]))
	}

	skipped := table.Skipped()
	if skipped == nil {
		skipped = []string{}
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"version": table.Version(),
		"entries": out,
		"skipped": skipped,
	})
}

// Resolve handles GET /api/tariffs/resolve?date=dd/mm/yyyy.
func (h *TariffHandler) Resolve(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		writeError(c, http.StatusBadRequest, "missing date")
		return
	}
	entry, err := h.quotes.Resolve(date)
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newTariffView(entry))
}
