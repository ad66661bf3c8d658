// Package scheduler переводит просроченные членства в expired и напоминает о
// скором окончании членства по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// MemberRepository хранилище членства.
type MemberRepository interface {
	ExpireMembers(ctx context.Context, now time.Time) (int64, error)
	FindMembersDueReminder(ctx context.Context, now, until time.Time) ([]*models.Member, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
}

// Dispatcher ставит письмо в очередь.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification)
}

// SchedulerService периодическая обработка сроков членства.
type SchedulerService struct {
	repo       MemberRepository
	dispatcher Dispatcher
	log        *slog.Logger
	window     time.Duration
	now        func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService. window задаёт,
// за сколько до окончания членства отправляется напоминание.
func NewSchedulerService(repo MemberRepository, dispatcher Dispatcher, log *slog.Logger, window time.Duration) *SchedulerService {
	return &SchedulerService{
		repo:       repo,
		dispatcher: dispatcher,
		log:        log,
		window:     window,
		now:        time.Now,
	}
}

// Start регистрирует Sweep по расписанию spec в часовом поясе loc и запускает
// cron. Возвращает cron для остановки.
func (s *SchedulerService) Start(ctx context.Context, spec string, loc *time.Location) (*cron.Cron, error) {
	const op = "scheduler.Start"
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() { s.Sweep(ctx) }); err != nil {
		return nil, fmt.Errorf("%s: invalid spec %q: %w", op, spec, err)
	}
	c.Start()
	s.log.Info("scheduler started", slog.String("spec", spec), slog.String("location", loc.String()))
	return c, nil
}

// Sweep выполняет один проход: истечение сроков, затем напоминания.
func (s *SchedulerService) Sweep(ctx context.Context) {
	now := s.now()
	s.expire(ctx, now)
	s.remind(ctx, now)
}

func (s *SchedulerService) expire(ctx context.Context, now time.Time) {
	s.log.Info("starting membership expiry sweep")
	n, err := s.repo.ExpireMembers(ctx, now)
	if err != nil {
		s.log.Error("failed to expire memberships", sl.Err(err))
		return
	}
	s.log.Info("memberships expired", slog.Int64("count", n))
}

// remind отправляет одно напоминание на каждый срок членства: отметка в базе
// переживает перезапуски, повторные проходы пропускают уже уведомлённых.
func (s *SchedulerService) remind(ctx context.Context, now time.Time) {
	if s.window <= 0 || s.dispatcher == nil {
		return
	}
	members, err := s.repo.FindMembersDueReminder(ctx, now, now.Add(s.window))
	if err != nil {
		s.log.Error("failed to find expiring memberships", sl.Err(err))
		return
	}
	if len(members) == 0 {
		s.log.Info("no expiring memberships found")
		return
	}
	s.log.Info("found expiring memberships", slog.Int("count", len(members)))
	for _, m := range members {
		s.dispatcher.Dispatch(ctx, models.Notification{
			Kind:           models.NotifyMembershipExpiring,
			Email:          m.Email,
			Name:           m.FullName,
			MembershipType: m.MembershipType,
			ExpiresAt:      m.ExpiresAt,
		})
		if err = s.repo.MarkReminded(ctx, m.ID, now); err != nil {
			s.log.Error("failed to mark reminder as sent", slog.String("member_id", m.ID), sl.Err(err))
		}
	}
}
