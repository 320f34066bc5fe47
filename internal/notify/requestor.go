package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/homeclick-store/internal/model"
)

type Publisher interface {
	Publish(ctx context.Context, msg model.NotificationMessage) error
}

type amqpPublisher struct {
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(ch *amqp.Channel, queue string) Publisher {
	return &amqpPublisher{ch: ch, queue: queue}
}

func (p *amqpPublisher) Publish(ctx context.Context, msg model.NotificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.ID.String(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Requestor queues notifications. Publish failures are logged and dropped.
type Requestor struct {
	publisher Publisher
	log       *slog.Logger
}

func NewRequestor(publisher Publisher, log *slog.Logger) *Requestor {
	return &Requestor{publisher: publisher, log: log}
}

func (r *Requestor) RequestOrderConfirmation(ctx context.Context, email string, sum OrderSummary) {
	r.request(ctx, email, OrderConfirmationSubject, FormatOrderConfirmation(sum), "order_id", sum.OrderID)
}

func (r *Requestor) RequestWelcome(ctx context.Context, email, name string) {
	r.request(ctx, email, WelcomeSubject, FormatWelcome(name))
}

func (r *Requestor) request(ctx context.Context, email, subject, body string, attrs ...any) {
	log := r.log.With(attrs...).With("recipient", email)
	if email == "" {
		log.Warn("notification skipped: no recipient")
		return
	}
	msg := model.NotificationMessage{ID: uuid.New(), Recipient: email, Subject: subject, Body: body}
	if err := r.publisher.Publish(ctx, msg); err != nil {
		log.Warn("request notification failed (ignored)", "error", err)
		return
	}
	log.Info("notification requested", "notification_id", msg.ID)
}
