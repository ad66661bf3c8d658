// Package update меняет статус членства вручную.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/services/membership"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Request тело PATCH-запроса.
type Request struct {
	MembershipStatus string `json:"membership_status" validate:"required,oneof=pending active expired"`
}

// Service описывает смену статуса.
type Service interface {
	UpdateStatus(ctx context.Context, id string, status models.MembershipStatus) (*models.Member, error)
}

// Handler обрабатывает PATCH /admin/members/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Изменить статус членства
// @Description Активация продлевает членство на год, истечение фиксирует текущий момент.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID членства"
// @Param request body Request true "Новый статус"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Членство не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/members/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.members.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing member id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	m, err := h.service.UpdateStatus(r.Context(), id, models.MembershipStatus(req.MembershipStatus))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("member not found"))
		return
	case errors.Is(err, membership.ErrInvalidStatus):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to update member", sl.Err(err), slog.String("member_id", id))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(m))
}
