// Package list отдает регистрации на конгресс для административной панели.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// Service описывает выборку регистраций.
type Service interface {
	List(ctx context.Context, year int) ([]*models.Registration, error)
}

// Handler обрабатывает GET /admin/registrations.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список регистраций
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param year query int false "Год конгресса, без параметра все годы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Router /admin/registrations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.registrations.list"

	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid congress year"))
			return
		}
		year = y
	}

	regs, err := h.service.List(r.Context(), year)
	if err != nil {
		h.log.Error("failed to list registrations",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if regs == nil {
		regs = []*models.Registration{}
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"registrations": regs,
		"count":         len(regs),
	}))
}
