// Package logout удаляет сессионную cookie.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
)

// SessionClearer удаляет сессию.
type SessionClearer interface {
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Handler завершает сессию.
type Handler struct {
	log      *slog.Logger
	sessions SessionClearer
}

// New создает новый Handler.
func New(log *slog.Logger, sessions SessionClearer) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	if err := h.sessions.Clear(w, r); err != nil {
		h.log.Error("failed to clear session",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"logged_out": true}))
}
