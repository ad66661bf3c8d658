package smtp

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// Mailer отправляет одно письмо за соединение.
type Mailer struct {
	transport TransportInterface
}

// NewMailer создаёт Mailer поверх транспорта.
func NewMailer(transport TransportInterface) *Mailer {
	return &Mailer{transport: transport}
}

// Send отправляет письмо. Если задан HTML, письмо уходит как multipart/alternative.
func (m *Mailer) Send(_ context.Context, msg models.EmailMessage) error {
	const op = "smtp.Send"
	from := m.transport.From()

	client, err := m.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(envelopeAddress(from)); err != nil {
		return fmt.Errorf("%s: MAIL FROM: %w", op, err)
	}
	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("%s: RCPT TO: %w", op, err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: DATA: %w", op, err)
	}
	if _, err = wc.Write([]byte(buildMessage(from, msg))); err != nil {
		return fmt.Errorf("%s: write body: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("%s: close body: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: QUIT: %w", op, err)
	}
	return nil
}

const boundary = "wahs-alternative-boundary"

func buildMessage(from string, msg models.EmailMessage) string {
	to := msg.To
	if msg.ToName != "" {
		to = mime.QEncoding.Encode("utf-8", msg.ToName) + " <" + msg.To + ">"
	}
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
	}
	if msg.HTML == "" {
		headers = append(headers, `Content-Type: text/plain; charset="UTF-8"`, "", msg.Text)
		return strings.Join(headers, "\r\n")
	}
	headers = append(headers,
		`Content-Type: multipart/alternative; boundary="`+boundary+`"`,
		"",
		"--"+boundary,
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		msg.Text,
		"--"+boundary,
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		msg.HTML,
		"--"+boundary+"--",
	)
	return strings.Join(headers, "\r\n")
}
