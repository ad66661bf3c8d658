// Package registration отвечает за регистрации на конгресс: платные, бесплатные
// для членов ассоциации и ручное подтверждение оплаты.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/pricing"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

var (
	// ErrAlreadyRegistered на этот конгресс уже есть регистрация.
	ErrAlreadyRegistered = errors.New("you are already registered for this congress")
	// ErrInvalidTicket тип билета не поддерживается для платной регистрации.
	ErrInvalidTicket = errors.New("invalid ticket type")
	// ErrInvalidYear год конгресса не задан.
	ErrInvalidYear = errors.New("invalid congress year")
	// ErrInvalidAmount сумма ручного подтверждения не является положительным числом.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNotPayable регистрация уже оплачена, бесплатна или отозвана.
	ErrNotPayable = errors.New("registration is not awaiting payment")
	// ErrTransactionClaimed идентификатор транзакции уже использован.
	ErrTransactionClaimed = errors.New("transaction id already used")
)

// ManualTxnPrefix префикс идентификатора транзакции при ручном подтверждении.
const ManualTxnPrefix = "MANUAL-"

const checkCacheTTL = time.Minute

// Store хранилище регистраций.
type Store interface {
	CreateRegistration(ctx context.Context, r models.Registration) (string, error)
	FindRegistration(ctx context.Context, email string, year int) (*models.Registration, error)
	GetRegistration(ctx context.Context, id string) (*models.Registration, error)
	ListRegistrations(ctx context.Context, year int) ([]*models.Registration, error)
	WithdrawRegistration(ctx context.Context, id string) error
	ConfirmRegistration(ctx context.Context, registrationID string, p models.Payment) error
}

// Eligibility проверяет право на бесплатную регистрацию.
type Eligibility interface {
	Eligible(ctx context.Context, email string) (*models.Member, error)
}

// Quoter расчёт цены билета.
type Quoter interface {
	Supports(tier models.TicketType) bool
	QuoteNow(tier models.TicketType) pricing.Quote
}

// Cache кэш ответов на проверку регистрации.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Dispatcher ставит письмо в очередь.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification)
}

// PaidRegistration созданная платная регистрация с ценой и ссылкой на оплату.
type PaidRegistration struct {
	ID          string        `json:"id"`
	Quote       pricing.Quote `json:"quote"`
	PaymentLink string        `json:"paypal_url,omitempty"`
}

// CheckResult ответ на проверку регистрации.
type CheckResult struct {
	Registered   bool              `json:"registered"`
	TicketType   models.TicketType `json:"ticket_type,omitempty"`
	IsWAHSMember bool              `json:"is_wahs_member"`
}

// Service бизнес-логика регистраций.
type Service struct {
	log          *slog.Logger
	store        Store
	members      Eligibility
	quoter       Quoter
	cache        Cache
	dispatcher   Dispatcher
	paymentLinks map[string]string
}

// New создаёт Service. cache и dispatcher могут быть nil.
func New(log *slog.Logger, store Store, members Eligibility, quoter Quoter, cache Cache,
	dispatcher Dispatcher, paymentLinks map[string]string) *Service {
	return &Service{
		log:          log,
		store:        store,
		members:      members,
		quoter:       quoter,
		cache:        cache,
		dispatcher:   dispatcher,
		paymentLinks: paymentLinks,
	}
}

// PaymentLinkKey ключ ссылки PayPal в конфиге для тарифа и режима цены.
func PaymentLinkKey(tier models.TicketType, earlyBird bool) string {
	if earlyBird {
		return "congress_" + string(tier) + "_early_bird"
	}
	return "congress_" + string(tier) + "_full"
}

// CreatePaid создаёт неоплаченную регистрацию и возвращает цену на текущий момент.
func (s *Service) CreatePaid(ctx context.Context, year int, req models.DummyRegistration) (*PaidRegistration, error) {
	const op = "registration.CreatePaid"
	log := s.log.With(slog.String("op", op))

	if year <= 0 {
		return nil, ErrInvalidYear
	}
	tier := models.TicketType(req.TicketType)
	if !tier.Paid() || !s.quoter.Supports(tier) {
		return nil, ErrInvalidTicket
	}
	email := normalizeEmail(req.Email)

	id, err := s.store.CreateRegistration(ctx, models.Registration{
		Email:        email,
		FullName:     req.FullName,
		Institution:  req.Institution,
		Country:      req.Country,
		CongressYear: year,
		TicketType:   tier,
		AmountPaid:   decimal.Zero,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil, ErrAlreadyRegistered
		}
		log.Error("failed to create registration", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, email, year)

	quote := s.quoter.QuoteNow(tier)
	log.Info("paid registration created",
		slog.String("registration_id", id),
		slog.String("tier", string(tier)),
		slog.Bool("early_bird", quote.IsEarlyBird),
	)
	return &PaidRegistration{
		ID:          id,
		Quote:       quote,
		PaymentLink: s.paymentLinks[PaymentLinkKey(tier, quote.IsEarlyBird)],
	}, nil
}

// RegisterFree регистрирует действующего члена ассоциации бесплатно. Отказы
// возвращаются ошибками пакета membership или ErrAlreadyRegistered.
func (s *Service) RegisterFree(ctx context.Context, year int, claim models.MemberClaim) (*models.Registration, error) {
	const op = "registration.RegisterFree"
	log := s.log.With(slog.String("op", op))

	if year <= 0 {
		return nil, ErrInvalidYear
	}
	email := normalizeEmail(claim.Email)

	if _, err := s.members.Eligible(ctx, email); err != nil {
		log.Info("free registration denied", slog.String("email", email), sl.Err(err))
		return nil, err
	}

	reg := models.Registration{
		Email:        email,
		FullName:     claim.FullName,
		Institution:  claim.Institution,
		Country:      claim.Country,
		CongressYear: year,
		TicketType:   models.TicketWAHSMember,
		IsWAHSMember: true,
		AmountPaid:   decimal.Zero,
	}
	id, err := s.store.CreateRegistration(ctx, reg)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil, ErrAlreadyRegistered
		}
		log.Error("failed to create member registration", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reg.ID = id
	s.invalidate(ctx, email, year)
	log.Info("member registration created", slog.String("registration_id", id))

	s.notify(ctx, &reg)
	return &reg, nil
}

// Check сообщает, есть ли у email регистрация на конгресс года year.
func (s *Service) Check(ctx context.Context, email string, year int) (*CheckResult, error) {
	const op = "registration.Check"
	log := s.log.With(slog.String("op", op))

	email = normalizeEmail(email)
	key := checkKey(email, year)
	if s.cache != nil {
		var cached CheckResult
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read check cache", sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	res := &CheckResult{}
	reg, err := s.store.FindRegistration(ctx, email, year)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	default:
		res = &CheckResult{Registered: true, TicketType: reg.TicketType, IsWAHSMember: reg.IsWAHSMember}
	}

	if s.cache != nil {
		if err = s.cache.Set(ctx, key, res, checkCacheTTL); err != nil {
			log.Warn("failed to write check cache", sl.Err(err))
		}
	}
	return res, nil
}

// List возвращает регистрации года year, 0 означает все годы.
func (s *Service) List(ctx context.Context, year int) ([]*models.Registration, error) {
	const op = "registration.List"
	regs, err := s.store.ListRegistrations(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return regs, nil
}

// ConfirmManual подтверждает оплату регистрации администратором. Идентификатор
// транзакции записывается в тот же журнал, что и при сверке PayPal.
func (s *Service) ConfirmManual(ctx context.Context, id string, req models.ManualPayment) (*models.Registration, error) {
	const op = "registration.ConfirmManual"
	log := s.log.With(slog.String("op", op), slog.String("registration_id", id))

	amount, err := decimal.NewFromString(strings.TrimSpace(req.AmountPaid))
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	txnID := strings.TrimSpace(req.PayPalTransactionID)
	if txnID == "" {
		txnID = ManualTxnPrefix + uuid.NewString()
	}
	err = s.store.ConfirmRegistration(ctx, id, models.Payment{
		TxnID:      txnID,
		PayerEmail: reg.Email,
		Amount:     amount,
		Source:     models.SourceManual,
	})
	switch {
	case errors.Is(err, repository.ErrStateChanged):
		return nil, ErrNotPayable
	case errors.Is(err, repository.ErrTransactionClaimed):
		return nil, ErrTransactionClaimed
	case err != nil:
		log.Error("failed to confirm registration", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg.AmountPaid = amount
	reg.PayPalTransactionID = &txnID
	s.invalidate(ctx, reg.Email, reg.CongressYear)
	log.Info("registration confirmed manually", slog.String("txn_id", txnID))

	s.notify(ctx, reg)
	return reg, nil
}

// Withdraw отзывает регистрацию.
func (s *Service) Withdraw(ctx context.Context, id string) error {
	const op = "registration.Withdraw"
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.store.WithdrawRegistration(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, reg.Email, reg.CongressYear)
	s.log.Info("registration withdrawn", slog.String("op", op), slog.String("registration_id", id))
	return nil
}

func (s *Service) notify(ctx context.Context, reg *models.Registration) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, models.Notification{
		Kind:         models.NotifyRegistrationConfirmed,
		Email:        reg.Email,
		Name:         reg.FullName,
		TicketType:   reg.TicketType,
		CongressYear: reg.CongressYear,
	})
}

func (s *Service) invalidate(ctx context.Context, email string, year int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, checkKey(email, year)); err != nil {
		s.log.Warn("failed to invalidate check cache", sl.Err(err))
	}
}

func checkKey(email string, year int) string {
	return fmt.Sprintf("registration:check:%s:%d", email, year)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
