// Package membership управляет заявками на членство в ассоциации и проверяет
// право на бесплатную регистрацию на конгресс.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/wahs-congress/internal/lib/password"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Причины отказа в бесплатной регистрации различаются, потому что различаются
// действия пользователя: вступить, продлить, оплатить.
var (
	ErrNoMembership = errors.New("no active WAHS membership found for this email, please check your email or contact wahskorea@gmail.com")
	ErrInactive     = errors.New("your WAHS membership is not currently active, please renew your membership before registering")
	ErrDuesOverdue  = errors.New("your WAHS dues are overdue, please pay your dues at iwahs.org/wahs/login before registering for free")
)

// Коды причин отказа для клиентов: вступить, продлить или оплатить.
const (
	ReasonNoMembership = "no_membership"
	ReasonInactive     = "inactive"
	ReasonDuesOverdue  = "dues_overdue"
)

// DenialReason возвращает код причины отказа в бесплатной регистрации.
// ok ложно, если err не является отказом по членству.
func DenialReason(err error) (reason string, ok bool) {
	switch {
	case errors.Is(err, ErrNoMembership):
		return ReasonNoMembership, true
	case errors.Is(err, ErrInactive):
		return ReasonInactive, true
	case errors.Is(err, ErrDuesOverdue):
		return ReasonDuesOverdue, true
	}
	return "", false
}

var (
	// ErrAccountExists учётная запись с таким email уже есть.
	ErrAccountExists = errors.New("an account with this email already exists, please log in")
	// ErrInvalidStatus неизвестный статус членства.
	ErrInvalidStatus = errors.New("invalid membership status")
	// ErrInvalidType неизвестный тип членства.
	ErrInvalidType = errors.New("invalid membership type")
)

// Store хранилище учётных записей и членства.
type Store interface {
	RegisterMember(ctx context.Context, user models.User, member models.Member) (string, string, error)
	LatestMember(ctx context.Context, email string) (*models.Member, error)
	ListMembers(ctx context.Context, filter models.MemberFilter) ([]*models.Member, error)
	UpdateMemberStatus(ctx context.Context, id string, status models.MembershipStatus, expiresAt *time.Time) (*models.Member, error)
}

// Dispatcher ставит письмо в очередь.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification)
}

// Reserver сообщает, что адрес закреплён за администратором.
type Reserver interface {
	Reserved(email string) bool
}

// Application результат подачи заявки.
type Application struct {
	UserID      string `json:"user_id"`
	MemberID    string `json:"member_id"`
	PaymentLink string `json:"paypal_url"`
}

// Service бизнес-логика членства.
type Service struct {
	log          *slog.Logger
	store        Store
	dispatcher   Dispatcher
	paymentLinks map[string]string
	reserved     Reserver
	now          func() time.Time
}

// New создаёт Service. dispatcher и reserved могут быть nil.
func New(log *slog.Logger, store Store, dispatcher Dispatcher, paymentLinks map[string]string, reserved Reserver) *Service {
	return &Service{
		log:          log,
		store:        store,
		dispatcher:   dispatcher,
		paymentLinks: paymentLinks,
		reserved:     reserved,
		now:          time.Now,
	}
}

// Apply создаёт учётную запись и заявку на членство в статусе pending и
// возвращает ссылку на оплату взноса.
func (s *Service) Apply(ctx context.Context, req models.DummyMemberApplication) (*Application, error) {
	const op = "membership.Apply"
	log := s.log.With(slog.String("op", op))

	mt := models.MembershipType(req.MembershipType)
	if !mt.Valid() {
		return nil, ErrInvalidType
	}
	email := normalizeEmail(req.Email)
	// учётные записи администраторов создаются только при старте портала
	if s.reserved != nil && s.reserved.Reserved(email) {
		log.Warn("application for reserved admin email rejected", slog.String("email", email))
		return nil, ErrAccountExists
	}
	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	member := models.Member{
		Email:            email,
		FullName:         req.FullName,
		Institution:      req.Institution,
		Country:          req.Country,
		MembershipType:   mt,
		MembershipStatus: models.StatusPending,
		JoinedAt:         s.now().UTC(),
	}
	userID, memberID, err := s.store.RegisterMember(ctx, user, member)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAccountExists
		}
		log.Error("failed to register member", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("membership application created", slog.String("member_id", memberID))

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, models.Notification{
			Kind:           models.NotifyMembershipWelcome,
			Email:          email,
			Name:           req.FullName,
			MembershipType: mt,
		})
	}
	return &Application{UserID: userID, MemberID: memberID, PaymentLink: s.PaymentLink(mt)}, nil
}

// PaymentLink ссылка PayPal для оплаты взноса. Для неизвестного типа
// используется ссылка профессионального членства.
func (s *Service) PaymentLink(mt models.MembershipType) string {
	if link, ok := s.paymentLinks[string(mt)]; ok {
		return link
	}
	return s.paymentLinks[string(models.MembershipProfessional)]
}

// Me возвращает запись о членстве пользователя.
func (s *Service) Me(ctx context.Context, email string) (*models.Member, error) {
	const op = "membership.Me"
	m, err := s.store.LatestMember(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// Eligible проверяет, может ли владелец email зарегистрироваться бесплатно.
// Заявка без оплаты (pending) считается неактивным членством, истёкшее
// членство (expired или просроченный expires_at) означает неоплаченный взнос.
func (s *Service) Eligible(ctx context.Context, email string) (*models.Member, error) {
	const op = "membership.Eligible"
	m, err := s.store.LatestMember(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoMembership
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case m.MembershipStatus == models.StatusExpired:
		return m, ErrDuesOverdue
	case m.MembershipStatus != models.StatusActive:
		return m, ErrInactive
	case m.ExpiresAt != nil && m.ExpiresAt.Before(s.now()):
		return m, ErrDuesOverdue
	}
	return m, nil
}

// List возвращает членов для административной панели.
func (s *Service) List(ctx context.Context, filter models.MemberFilter) ([]*models.Member, error) {
	const op = "membership.List"
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, ErrInvalidType
	}
	members, err := s.store.ListMembers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}

// UpdateStatus меняет статус членства вручную. Активация продлевает членство
// на год от текущего момента, истечение фиксирует текущий момент.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.MembershipStatus) (*models.Member, error) {
	const op = "membership.UpdateStatus"
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var expiresAt *time.Time
	now := s.now().UTC()
	switch status {
	case models.StatusActive:
		t := now.AddDate(1, 0, 0)
		expiresAt = &t
	case models.StatusExpired:
		expiresAt = &now
	}

	m, err := s.store.UpdateMemberStatus(ctx, id, status, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("membership status updated",
		slog.String("op", op),
		slog.String("member_id", id),
		slog.String("status", string(status)),
	)
	if status == models.StatusActive && s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, models.Notification{
			Kind:           models.NotifyMembershipActivated,
			Email:          m.Email,
			Name:           m.FullName,
			MembershipType: m.MembershipType,
			ExpiresAt:      m.ExpiresAt,
		})
	}
	return m, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
