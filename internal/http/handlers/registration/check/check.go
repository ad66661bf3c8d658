// Package check отвечает, зарегистрирован ли email на конгресс.
package check

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/services/registration"
)

// Service описывает интерфейс проверки регистрации.
type Service interface {
	Check(ctx context.Context, email string, year int) (*registration.CheckResult, error)
}

// Handler проверяет регистрацию.
type Handler struct {
	log         *slog.Logger
	service     Service
	defaultYear int
}

// New создает новый Handler. defaultYear используется, если год не передан.
func New(log *slog.Logger, service Service, defaultYear int) *Handler {
	return &Handler{log: log, service: service, defaultYear: defaultYear}
}

// ServeHTTP godoc
// @Summary Проверка регистрации
// @Tags Registrations
// @Produce  json
// @Param email query string true "Email участника"
// @Param year query int false "Год конгресса"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Router /registrations/check [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.check"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("email is required"))
		return
	}
	year := h.defaultYear
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid congress year"))
			return
		}
		year = y
	}

	res, err := h.service.Check(r.Context(), email, year)
	if err != nil {
		log.Error("failed to check registration", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check registration"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
