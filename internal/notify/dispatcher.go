// Package notify ставит письма в очередь RabbitMQ без блокировки вызывающего.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wahs-congress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// PublishFunc публикует одно уведомление.
type PublishFunc func(n models.Notification) error

// Dispatcher публикует уведомления в фоне. Ошибки публикации только логируются.
type Dispatcher struct {
	log     *slog.Logger
	publish PublishFunc
	timeout time.Duration
	wg      sync.WaitGroup
}

// New создаёт Dispatcher поверх произвольной функции публикации.
func New(log *slog.Logger, publish PublishFunc, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{log: log, publish: publish, timeout: timeout}
}

// NewAMQP создаёт Dispatcher, публикующий в exchange уведомлений.
// Канал amqp не безопасен для конкурентной публикации, поэтому вызовы сериализуются.
func NewAMQP(log *slog.Logger, ch *amqp.Channel, timeout time.Duration) *Dispatcher {
	var mu sync.Mutex
	return New(log, func(n models.Notification) error {
		mu.Lock()
		defer mu.Unlock()
		return rabbitmq.PublishNotification(ch, rabbitmq.EmailRoutingKey, rabbitmq.Notification{
			Kind:    string(n.Kind),
			Payload: n,
		})
	}, timeout)
}

// Dispatch публикует n в отдельной горутине и сразу возвращает управление.
func (d *Dispatcher) Dispatch(_ context.Context, n models.Notification) {
	const op = "notify.Dispatch"
	log := d.log.With(slog.String("op", op), slog.String("kind", string(n.Kind)), slog.String("email", n.Email))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		done := make(chan error, 1)
		go func() { done <- d.publish(n) }()

		select {
		case err := <-done:
			if err != nil {
				log.Error("failed to publish notification", sl.Err(err))
				return
			}
			log.Debug("notification queued")
		case <-time.After(d.timeout):
			log.Error("notification publish timed out", slog.Duration("timeout", d.timeout))
		}
	}()
}

// Wait ждёт завершения уже запущенных публикаций.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
