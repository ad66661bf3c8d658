// Package member реализует бесплатную регистрацию на конгресс для действующих
// членов ассоциации.
package member

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/services/membership"
	"github.com/magabrotheeeer/wahs-congress/internal/services/registration"
)

// Service описывает интерфейс бесплатной регистрации.
type Service interface {
	RegisterFree(ctx context.Context, year int, claim models.MemberClaim) (*models.Registration, error)
}

// Handler управляет бесплатной регистрацией членов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Бесплатная регистрация члена WAHS
// @Description Отказ 403 содержит код reason: no_membership, inactive или dues_overdue.
// @Tags Registrations
// @Accept  json
// @Produce  json
// @Param year path int true "Год конгресса"
// @Param request body models.MemberClaim true "Данные члена"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.DeniedResponse "Нет права на бесплатную регистрацию"
// @Failure 409 {object} response.ErrorResponse "Уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /congress/{year}/registrations/member [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.registration.member"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid congress year"))
		return
	}

	var claim models.MemberClaim
	if err = json.NewDecoder(r.Body).Decode(&claim); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err = h.validate.Struct(claim); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	claim.CongressYear = year

	reg, err := h.service.RegisterFree(r.Context(), year, claim)
	if reason, denied := membership.DenialReason(err); denied {
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Denied(reason, err.Error()))
		return
	}
	switch {
	case errors.Is(err, registration.ErrAlreadyRegistered):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, registration.ErrInvalidYear):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to register member", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create registration"))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(reg))
}
