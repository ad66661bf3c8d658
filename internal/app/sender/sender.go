// Package sender собирает приложение, которое читает очередь уведомлений и
// отправляет письма через SMTP или Mailjet.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/mailjet"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/wahs-congress/internal/services/sender"
)

const workers = 4

// App приложение отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// NewMailer выбирает транспорт по email_provider.
func NewMailer(cfg *config.Config, logger *slog.Logger) (senderservice.Mailer, error) {
	switch cfg.EmailProvider {
	case "smtp", "":
		return smtp.NewMailer(smtp.NewTransport(cfg.SMTP, logger)), nil
	case "mailjet":
		m, err := mailjet.New(cfg.Mailjet)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// New подключается к RabbitMQ и готовит обработчик писем.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	mailer, err := NewMailer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(logger, mailer, cfg.SiteURL, cfg.PayPal.Links),
		logger:        logger,
	}, nil
}

// Run читает очередь писем до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	wait, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.EmailQueue, workers, a.senderService.Handle)
	if err != nil {
		a.logger.Error("failed to start email consumer", sl.Err(err))
		return err
	}
	a.logger.Info("sender consuming", slog.String("queue", rabbitmq.EmailQueue))

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	wait()

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
