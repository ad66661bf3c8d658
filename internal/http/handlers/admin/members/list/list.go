// Package list отдает список членов ассоциации для административной панели.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/services/membership"
)

// Service описывает выборку членов.
type Service interface {
	List(ctx context.Context, filter models.MemberFilter) ([]*models.Member, error)
}

// Handler обрабатывает GET /admin/members.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список членов
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param status query string false "pending, active или expired"
// @Param type query string false "professional или student"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный фильтр"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/members [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.members.list"

	filter := models.MemberFilter{
		Status: models.MembershipStatus(r.URL.Query().Get("status")),
		Type:   models.MembershipType(r.URL.Query().Get("type")),
	}
	members, err := h.service.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, membership.ErrInvalidStatus) || errors.Is(err, membership.ErrInvalidType) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		h.log.Error("failed to list members",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if members == nil {
		members = []*models.Member{}
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"members": members,
		"count":   len(members),
	}))
}
