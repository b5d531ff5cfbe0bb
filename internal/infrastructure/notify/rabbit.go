package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	appnotify "github.com/jhoicas/materiales-api/internal/application/notify"
)

// publisher abstrae el canal AMQP.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitNotifier publica cada evento en un exchange topic; la routing key es el Kind.
type RabbitNotifier struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
	mu       sync.Mutex // amqp.Channel no admite publicaciones concurrentes
}

// NewRabbitNotifier conecta y declara el exchange (topic, durable).
func NewRabbitNotifier(url, exchange string) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: conectar: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: canal: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: exchange %s: %w", exchange, err)
	}
	return &RabbitNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

// Notify implementa notify.Notifier.
func (r *RabbitNotifier) Notify(ctx context.Context, ev appnotify.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch.PublishWithContext(ctx, r.exchange, string(ev.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EntityID,
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Kind),
		Body:         body,
	})
}

// Close cierra canal y conexión.
func (r *RabbitNotifier) Close() {
	if c, ok := r.ch.(*amqp.Channel); ok && c != nil {
		_ = c.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}
