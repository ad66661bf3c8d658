// Package withdraw отзывает регистрацию на конгресс.
package withdraw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Service описывает отзыв регистрации.
type Service interface {
	Withdraw(ctx context.Context, id string) error
}

// Handler обрабатывает DELETE /admin/registrations/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отозвать регистрацию
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID регистрации"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Регистрация не найдена или уже отозвана"
// @Router /admin/registrations/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.registrations.withdraw"

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing registration id"))
		return
	}

	if err := h.service.Withdraw(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("registration not found"))
			return
		}
		h.log.Error("failed to withdraw registration",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("registration_id", id),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"id": id, "withdrawn": true}))
}
