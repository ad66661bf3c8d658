package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
)

// ReadyFunc проверяет готовность зависимостей.
type ReadyFunc func() error

type Handler struct {
	log   *slog.Logger
	ready ReadyFunc
}

// New создает Handler. ready может быть nil.
func New(log *slog.Logger, ready ReadyFunc) *Handler {
	return &Handler{
		log:   log,
		ready: ready,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	if h.ready != nil {
		if err := h.ready(); err != nil {
			h.log.Error("not ready", slog.String("op", op), sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("database not ready"))
			return
		}
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
