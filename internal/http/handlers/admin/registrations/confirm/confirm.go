// Package confirm подтверждает оплату регистрации вручную.
package confirm

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
	"github.com/magabrotheeeer/wahs-congress/internal/services/registration"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Service описывает ручное подтверждение оплаты.
type Service interface {
	ConfirmManual(ctx context.Context, id string, req models.ManualPayment) (*models.Registration, error)
}

// Handler обрабатывает PATCH /admin/registrations/{id}/payment.
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
// @Summary Подтвердить оплату регистрации
// @Description Без paypal_transaction_id генерируется идентификатор MANUAL-<uuid>.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID регистрации"
// @Param request body models.ManualPayment true "Сумма и идентификатор транзакции"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректная сумма"
// @Failure 404 {object} response.ErrorResponse "Регистрация не найдена"
// @Failure 409 {object} response.ErrorResponse "Уже оплачена или транзакция уже учтена"
// @Router /admin/registrations/{id}/payment [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.registrations.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing registration id"))
		return
	}

	var req models.ManualPayment
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

	reg, err := h.service.ConfirmManual(r.Context(), id, req)
	switch {
	case errors.Is(err, registration.ErrInvalidAmount):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("registration not found"))
		return
	case errors.Is(err, registration.ErrNotPayable), errors.Is(err, registration.ErrTransactionClaimed):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to confirm registration", sl.Err(err), slog.String("registration_id", id))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(reg))
}
