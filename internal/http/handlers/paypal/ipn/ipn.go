// Package ipn реализует приём уведомлений PayPal IPN.
//
// Обработчик всегда отвечает 200: PayPal повторяет доставку при любом другом
// коде, а исход сверки терминален и повтор его не изменит.
package ipn

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/services/reconcile"
)

// maxBodyBytes ограничение размера тела IPN.
const maxBodyBytes = 64 << 10

// Processor проверяет и сверяет уведомление.
type Processor interface {
	Process(ctx context.Context, rawBody []byte) reconcile.Outcome
}

// Response тело ответа на IPN.
type Response struct {
	OK      bool   `json:"ok"`
	Action  string `json:"action,omitempty"`
	Skipped string `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Handler принимает IPN.
type Handler struct {
	log       *slog.Logger
	processor Processor
}

// New создает новый Handler.
func New(log *slog.Logger, processor Processor) *Handler {
	return &Handler{log: log, processor: processor}
}

// FromOutcome переводит исход сверки в тело ответа.
func FromOutcome(o reconcile.Outcome) Response {
	switch o.Stage {
	case reconcile.StageApplied:
		return Response{OK: true, Action: o.Action}
	case reconcile.StageSkipped:
		return Response{OK: true, Skipped: o.Reason}
	default:
		return Response{OK: false, Reason: o.Reason}
	}
}

// ServeHTTP godoc
// @Summary PayPal IPN
// @Description Принимает уведомление PayPal IPN (form-urlencoded), проверяет его у PayPal и сверяет платёж. Всегда отвечает 200.
// @Tags Payments
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Success 200 {object} Response
// @Router /webhooks/paypal-ipn [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.paypal.ipn"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read ipn body", sl.Err(err))
		render.JSON(w, r, Response{OK: false, Reason: reconcile.ReasonMalformed})
		return
	}
	defer r.Body.Close()

	outcome := h.processor.Process(r.Context(), body)
	log.Info("ipn processed",
		slog.String("stage", string(outcome.Stage)),
		slog.String("label", outcome.Label()),
	)
	render.JSON(w, r, FromOutcome(outcome))
}
