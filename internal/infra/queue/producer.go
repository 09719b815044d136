package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MailKindVerification  = "verification"
	MailKindPasswordReset = "password_reset"
)

// MailJob is the wire payload for one outgoing e-mail.
type MailJob struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishMail(ctx context.Context, job MailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("mail job marshal failed: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}

	return nil
}
