package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/notify"
)

const idempotencyTTL = 24 * time.Hour

// Delivery is the part of an amqp.Delivery the worker needs.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type NotificationWorker struct {
	channel     *amqp.Channel
	queue       string
	mailer      notify.Mailer
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewNotificationWorker(
	ch *amqp.Channel,
	queue string,
	mailer notify.Mailer,
	redisClient *redis.Client,
	log *slog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		channel:     ch,
		queue:       queue,
		mailer:      mailer,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares the notification queue and its dead-letter pair.
func SetupRabbitMQ(ch *amqp.Channel, queue string) error {
	dlx, dlq := queue+".dlx", queue+".dlq"
	if err := ch.ExchangeDeclare(dlx, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlq, queue, dlx, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return fmt.Errorf("declare notification queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.handle(ctx, msg.Body, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("notification worker started", "queue", w.queue)
	return nil
}

func (w *NotificationWorker) Stop() { close(w.done) }

func (w *NotificationWorker) handle(ctx context.Context, body []byte, d Delivery) {
	var msg model.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		w.log.Error("unmarshal notification", "error", err)
		_ = d.Nack(false, false)
		return
	}

	log := w.log.With("notification_id", msg.ID, "recipient", msg.Recipient)

	key := "notification_sent:" + msg.ID.String()
	exists, err := w.redisClient.Exists(ctx, key).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = d.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("notification already sent, skipping")
		_ = d.Ack(false)
		return
	}

	if err := w.mailer.Send(ctx, msg.Subject, msg.Body, msg.Recipient); err != nil {
		log.Warn("send mail failed", "error", err)
		_ = d.Nack(false, false) // → DLQ
		return
	}

	if err := w.redisClient.Set(ctx, key, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = d.Ack(false)
	log.Info("notification sent")
}
