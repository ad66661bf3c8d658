// Package transactions отдает журнал платежей.
package transactions

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

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Store описывает чтение журнала.
type Store interface {
	ListTransactions(ctx context.Context, limit int) ([]*models.PaymentTransaction, error)
}

// Handler обрабатывает GET /admin/transactions.
type Handler struct {
	log   *slog.Logger
	store Store
}

// New создает новый Handler.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{log: log, store: store}
}

// ServeHTTP godoc
// @Summary Журнал платежей
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param limit query int false "Количество записей, по умолчанию 100"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный limit"
// @Router /admin/transactions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.transactions"

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid limit"))
			return
		}
		limit = min(l, maxLimit)
	}

	txns, err := h.store.ListTransactions(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list transactions",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if txns == nil {
		txns = []*models.PaymentTransaction{}
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{"transactions": txns}))
}
