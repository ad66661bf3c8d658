// Package tier отдаёт текущую цену одного тарифа.
package tier

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/pricing"
)

// Pricer политика цен.
type Pricer interface {
	Supports(tier models.TicketType) bool
	QuoteNow(tier models.TicketType) pricing.Quote
}

// Handler отдаёт цену тарифа.
type Handler struct {
	log    *slog.Logger
	pricer Pricer
}

// New создает новый Handler.
func New(log *slog.Logger, pricer Pricer) *Handler {
	return &Handler{log: log, pricer: pricer}
}

// ServeHTTP godoc
// @Summary Цена тарифа
// @Tags Pricing
// @Produce  json
// @Param tier path string true "regular или student"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Неизвестный тариф"
// @Router /pricing/{tier} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pricing.tier"

	t := models.TicketType(chi.URLParam(r, "tier"))
	// QuoteNow паникует на неизвестном тарифе
	if !h.pricer.Supports(t) {
		h.log.Info("unknown tier requested",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("tier", string(t)),
		)
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown tier"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(h.pricer.QuoteNow(t)))
}
