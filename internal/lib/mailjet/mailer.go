// Package mailjet отправляет письма через Mailjet Send API v3.1.
package mailjet

import (
	"context"
	"errors"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// ErrNotConfigured не заданы ключи API.
var ErrNotConfigured = errors.New("mailjet keys are not configured")

const senderName = "WAHS"

// Client подмножество клиента Mailjet, используемое Mailer.
type Client interface {
	SendMailV31(data *mailjet.MessagesV31) (*mailjet.ResultsV31, error)
}

// Mailer отправляет письма от имени настроенного отправителя.
type Mailer struct {
	client Client
	sender string
}

// New создаёт Mailer с клиентом Mailjet из конфигурации.
func New(cfg config.Mailjet) (*Mailer, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, ErrNotConfigured
	}
	clt := mailjet.NewMailjetClient(cfg.PublicKey, cfg.PrivateKey)
	return NewWithClient(clientFunc(func(data *mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
		return clt.SendMailV31(data)
	}), cfg.Sender), nil
}

type clientFunc func(data *mailjet.MessagesV31) (*mailjet.ResultsV31, error)

func (f clientFunc) SendMailV31(data *mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
	return f(data)
}

// NewWithClient создаёт Mailer поверх произвольного клиента.
func NewWithClient(client Client, sender string) *Mailer {
	return &Mailer{client: client, sender: sender}
}

// Send отправляет одно письмо.
func (m *Mailer) Send(_ context.Context, msg models.EmailMessage) error {
	const op = "mailjet.Send"
	info := []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: m.sender, Name: senderName},
		To:       &mailjet.RecipientsV31{mailjet.RecipientV31{Email: msg.To, Name: msg.ToName}},
		Subject:  msg.Subject,
		TextPart: msg.Text,
		HTMLPart: msg.HTML,
	}}

	msgs := mailjet.MessagesV31{Info: info}
	if _, err := m.client.SendMailV31(&msgs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
