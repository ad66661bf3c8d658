// Package reconcile сопоставляет подтверждённые платежи PayPal с заявками на
// членство и регистрациями на конгресс и применяет переход состояния ровно один раз.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/wahs-congress/internal/cache"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/paypal"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Store хранилище записей членства и регистраций.
type Store interface {
	TransactionRecorded(ctx context.Context, txnID string) (bool, error)
	FindPendingMember(ctx context.Context, email string) (*models.Member, error)
	FindUnpaidRegistration(ctx context.Context, email string) (*models.Registration, error)
	ActivateMember(ctx context.Context, memberID string, p models.Payment, expiresAt time.Time) error
	ConfirmRegistration(ctx context.Context, registrationID string, p models.Payment) error
}

// Verifier проверяет подлинность тела IPN.
type Verifier interface {
	Verify(ctx context.Context, rawBody []byte) error
}

// Locker выдаёт блокировку по ключу.
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context) error, error)
}

// Bands определяет, к каким ценовым диапазонам относится сумма.
type Bands interface {
	IsMembershipAmount(amount decimal.Decimal) bool
	IsCongressAmount(amount decimal.Decimal) bool
}

// Dispatcher ставит письмо в очередь, не блокируя вызывающего.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification)
}

// Recorder учитывает исходы сверки.
type Recorder interface {
	Observe(o Outcome)
}

// Options дополнительные параметры Engine.
type Options struct {
	// AllowUnmatchedAmounts разрешает сверять с регистрациями суммы,
	// не попавшие ни в один диапазон.
	AllowUnmatchedAmounts bool
	Locker                Locker
	Dispatcher            Dispatcher
	Recorder              Recorder
}

// Engine конечный автомат сверки платежей.
type Engine struct {
	log      *slog.Logger
	store    Store
	verifier Verifier
	bands    Bands
	opts     Options
	now      func() time.Time
}

// New создаёт Engine. Locker, Dispatcher и Recorder необязательны.
func New(log *slog.Logger, store Store, verifier Verifier, bands Bands, opts Options) *Engine {
	return &Engine{
		log:      log,
		store:    store,
		verifier: verifier,
		bands:    bands,
		opts:     opts,
		now:      time.Now,
	}
}

// Process проверяет подлинность тела IPN и сверяет платёж.
// Всегда возвращает терминальный исход; ошибки только логируются.
func (e *Engine) Process(ctx context.Context, rawBody []byte) Outcome {
	const op = "reconcile.Process"
	log := e.log.With(slog.String("op", op))

	if err := e.verifier.Verify(ctx, rawBody); err != nil {
		if errors.Is(err, paypal.ErrNotVerified) {
			log.Warn("ipn not verified")
			return e.finish(rejected(ReasonNotVerified))
		}
		log.Error("ipn verification failed", sl.Err(err))
		return e.finish(rejected(ReasonVerifyError))
	}

	n, err := paypal.ParseNotification(rawBody)
	if err != nil {
		log.Warn("malformed ipn body", sl.Err(err))
		return e.finish(rejected(ReasonMalformed))
	}
	return e.Reconcile(ctx, n)
}

// Reconcile сверяет уже проверенное уведомление.
func (e *Engine) Reconcile(ctx context.Context, n paypal.Notification) Outcome {
	return e.finish(e.reconcile(ctx, n))
}

func (e *Engine) reconcile(ctx context.Context, n paypal.Notification) Outcome {
	const op = "reconcile.Reconcile"
	log := e.log.With(
		slog.String("op", op),
		slog.String("txn_id", n.TxnID),
		slog.String("payer_email", n.PayerEmail),
		slog.String("payment_status", n.PaymentStatus),
	)

	if n.PaymentStatus != paypal.StatusCompleted {
		return skipped(n.PaymentStatus)
	}
	if n.PayerEmail == "" {
		log.Warn("ipn without payer email")
		return rejected(ReasonNoEmail)
	}
	amount, err := n.Amount()
	if err != nil {
		log.Warn("ipn with invalid amount", slog.String("amount", n.RawAmount))
		return rejected(ReasonInvalidAmount)
	}
	log = log.With(slog.String("amount", amount.String()))

	if n.TxnID != "" {
		unlock, ok := e.lock(ctx, log, n.TxnID)
		if !ok {
			return skipped(ReasonDuplicateTxn)
		}
		defer unlock()

		recorded, err := e.store.TransactionRecorded(ctx, n.TxnID)
		if err != nil {
			log.Error("duplicate check failed", sl.Err(err))
			return rejected(ReasonPersistenceError)
		}
		if recorded {
			log.Info("duplicate transaction")
			return skipped(ReasonDuplicateTxn)
		}
	}

	payment := models.Payment{
		TxnID:      n.TxnID,
		PayerEmail: n.PayerEmail,
		Amount:     amount,
		Source:     models.SourcePayPal,
	}

	isMembership := e.bands.IsMembershipAmount(amount)
	if isMembership {
		if o, done := e.applyMembership(ctx, log, payment); done {
			return o
		}
	}

	if e.bands.IsCongressAmount(amount) || (e.opts.AllowUnmatchedAmounts && !isMembership) {
		if o, done := e.applyRegistration(ctx, log, payment); done {
			return o
		}
	}

	log.Warn("payment matched no pending record, manual reconciliation required")
	return skipped(ReasonNoMatch)
}

// applyMembership активирует самую свежую заявку в pending. done=false означает,
// что подходящей заявки нет и сверка продолжается с регистрациями.
func (e *Engine) applyMembership(ctx context.Context, log *slog.Logger, p models.Payment) (Outcome, bool) {
	member, err := e.store.FindPendingMember(ctx, p.PayerEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return Outcome{}, false
	}
	if err != nil {
		log.Error("pending member lookup failed", sl.Err(err))
		return rejected(ReasonPersistenceError), true
	}

	expiresAt := e.now().AddDate(1, 0, 0)
	err = e.store.ActivateMember(ctx, member.ID, p, expiresAt)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrTransactionClaimed):
		log.Info("duplicate transaction")
		return skipped(ReasonDuplicateTxn), true
	case errors.Is(err, repository.ErrStateChanged):
		log.Warn("member left pending state during reconciliation", slog.String("member_id", member.ID))
		return Outcome{}, false
	default:
		log.Error("member activation failed", slog.String("member_id", member.ID), sl.Err(err))
		return rejected(ReasonPersistenceError), true
	}

	log.Info("membership activated", slog.String("member_id", member.ID))
	e.dispatch(ctx, models.Notification{
		Kind:           models.NotifyMembershipActivated,
		Email:          member.Email,
		Name:           member.FullName,
		MembershipType: member.MembershipType,
		ExpiresAt:      &expiresAt,
	})
	return applied(ActionMembershipActivated, member.ID), true
}

func (e *Engine) applyRegistration(ctx context.Context, log *slog.Logger, p models.Payment) (Outcome, bool) {
	reg, err := e.store.FindUnpaidRegistration(ctx, p.PayerEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return Outcome{}, false
	}
	if err != nil {
		log.Error("unpaid registration lookup failed", sl.Err(err))
		return rejected(ReasonPersistenceError), true
	}

	err = e.store.ConfirmRegistration(ctx, reg.ID, p)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrTransactionClaimed):
		log.Info("duplicate transaction")
		return skipped(ReasonDuplicateTxn), true
	case errors.Is(err, repository.ErrStateChanged):
		log.Warn("registration changed during reconciliation", slog.String("registration_id", reg.ID))
		return Outcome{}, false
	default:
		log.Error("registration confirmation failed", slog.String("registration_id", reg.ID), sl.Err(err))
		return rejected(ReasonPersistenceError), true
	}

	log.Info("registration confirmed", slog.String("registration_id", reg.ID))
	e.dispatch(ctx, models.Notification{
		Kind:         models.NotifyRegistrationConfirmed,
		Email:        reg.Email,
		Name:         reg.FullName,
		TicketType:   reg.TicketType,
		CongressYear: reg.CongressYear,
	})
	return applied(ActionRegistrationConfirmed, reg.ID), true
}

// lock сериализует доставки одной транзакции. ok=false означает, что
// транзакцию уже обрабатывает другой запрос. Ошибка Redis не блокирует
// сверку: остаётся защита журналом транзакций в БД.
func (e *Engine) lock(ctx context.Context, log *slog.Logger, txnID string) (func(), bool) {
	noop := func() {}
	if e.opts.Locker == nil {
		return noop, true
	}
	unlock, err := e.opts.Locker.Lock(ctx, "txn:"+txnID)
	if errors.Is(err, cache.ErrLockHeld) {
		log.Info("transaction is being processed by another delivery")
		return noop, false
	}
	if err != nil {
		log.Warn("reconciliation lock unavailable", sl.Err(err))
		return noop, true
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to release reconciliation lock", sl.Err(err))
		}
	}, true
}

func (e *Engine) dispatch(ctx context.Context, n models.Notification) {
	if e.opts.Dispatcher == nil {
		return
	}
	e.opts.Dispatcher.Dispatch(ctx, n)
}

func (e *Engine) finish(o Outcome) Outcome {
	if e.opts.Recorder != nil {
		e.opts.Recorder.Observe(o)
	}
	return o
}
