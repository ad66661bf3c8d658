package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// AppID отправитель в свойствах публикуемых сообщений.
const AppID = "wahs-congress"

// ErrNoKind уведомление без вида нельзя маршрутизировать в sender.
var ErrNoKind = errors.New("notification kind is required")

// Notification сообщение для exchange уведомлений. Kind попадает в свойство
// type, Payload сериализуется в тело как JSON.
type Notification struct {
	Kind    string
	Payload any
}

// PublishNotification публикует n в NotificationsExchange с ключом routingKey.
// Сообщение сохраняется на диске брокера и получает уникальный message-id.
func PublishNotification(ch *amqp.Channel, routingKey string, n Notification) error {
	const op = "rabbitmq.PublishNotification"
	if n.Kind == "" {
		return fmt.Errorf("%s: %w", op, ErrNoKind)
	}
	body, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		NotificationsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         n.Kind,
			AppId:        AppID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
