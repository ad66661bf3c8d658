// Package sender превращает уведомления из очереди в письма и отправляет их.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// Mailer транспорт писем: SMTP или Mailjet.
type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Service формирует и отправляет письма.
type Service struct {
	mailer       Mailer
	log          *slog.Logger
	siteURL      string
	paymentLinks map[string]string
}

// New создаёт Service. paymentLinks ключуются типом членства.
func New(log *slog.Logger, mailer Mailer, siteURL string, paymentLinks map[string]string) *Service {
	return &Service{
		mailer:       mailer,
		log:          log,
		siteURL:      strings.TrimRight(siteURL, "/"),
		paymentLinks: paymentLinks,
	}
}

// Handle разбирает сообщение очереди и отправляет соответствующее письмо.
func (s *Service) Handle(ctx context.Context, body []byte) error {
	const op = "sender.Handle"
	log := s.log.With(slog.String("op", op))

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}

	msg, err := s.Render(n)
	if err != nil {
		log.Error("failed to render notification", slog.String("kind", string(n.Kind)), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.mailer.Send(ctx, msg); err != nil {
		log.Error("failed to send email", slog.String("kind", string(n.Kind)), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email sent successfully", slog.String("kind", string(n.Kind)), slog.String("to", n.Email))
	return nil
}

// Render формирует письмо для уведомления n.
func (s *Service) Render(n models.Notification) (models.EmailMessage, error) {
	if n.Email == "" {
		return models.EmailMessage{}, fmt.Errorf("notification %q without recipient", n.Kind)
	}
	name := n.Name
	if name == "" {
		name = "member"
	}
	greeting := fmt.Sprintf("Dear %s,", name)

	var subject string
	var lines []string
	switch n.Kind {
	case models.NotifyMembershipWelcome:
		subject = "Your WAHS membership application"
		lines = []string{
			greeting,
			fmt.Sprintf("Thank you for applying for %s membership of the World Association for Hallyu Studies.", n.MembershipType),
			"Your membership becomes active as soon as your dues payment is received.",
		}
		if link := s.paymentLinks[string(n.MembershipType)]; link != "" {
			lines = append(lines, "Pay your dues via PayPal: "+link)
		}
	case models.NotifyMembershipActivated:
		subject = "Your WAHS membership is active"
		lines = []string{greeting, "We have received your dues payment. Your WAHS membership is now active."}
		if n.ExpiresAt != nil {
			lines = append(lines, "Valid until: "+n.ExpiresAt.Format("January 2, 2006")+".")
		}
		lines = append(lines, "As an active member you can register for the congress free of charge: "+s.siteURL+"/congress")
	case models.NotifyMembershipExpiring:
		subject = "Your WAHS membership expires soon"
		lines = []string{greeting}
		if n.ExpiresAt != nil {
			lines = append(lines, "Your WAHS membership expires on "+n.ExpiresAt.Format("January 2, 2006")+".")
		}
		lines = append(lines, "Please renew your dues to keep your member benefits: "+s.siteURL+"/wahs/login")
	case models.NotifyRegistrationConfirmed:
		subject = fmt.Sprintf("WAHS Congress %d registration confirmed", n.CongressYear)
		lines = []string{
			greeting,
			fmt.Sprintf("Your registration for the WAHS Congress %d is confirmed (ticket: %s).", n.CongressYear, n.TicketType),
			"Programme and venue details: " + s.siteURL + "/congress",
		}
	default:
		return models.EmailMessage{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	lines = append(lines, "WAHS Secretariat")

	return models.EmailMessage{
		To:      n.Email,
		ToName:  n.Name,
		Subject: subject,
		Text:    strings.Join(lines, "\n\n"),
		HTML:    renderHTML(lines),
	}, nil
}

func renderHTML(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</p>\n")
	}
	return b.String()
}
