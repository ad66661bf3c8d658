// Package list отдаёт текущие цены всех платных билетов на конгресс.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/pricing"
)

// Pricer политика цен.
type Pricer interface {
	Tiers() []models.TicketType
	QuoteNow(tier models.TicketType) pricing.Quote
}

// Handler отдаёт цены.
type Handler struct {
	log    *slog.Logger
	pricer Pricer
}

// New создает новый Handler.
func New(log *slog.Logger, pricer Pricer) *Handler {
	return &Handler{log: log, pricer: pricer}
}

// ServeHTTP godoc
// @Summary Цены на билеты
// @Tags Pricing
// @Produce  json
// @Success 200 {object} response.Response
// @Router /pricing [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tiers := h.pricer.Tiers()
	quotes := make([]pricing.Quote, 0, len(tiers))
	for _, t := range tiers {
		quotes = append(quotes, h.pricer.QuoteNow(t))
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"quotes": quotes,
	}))
}
