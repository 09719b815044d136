package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MailSenderInterface is implemented by the SMTP sender in infra/mail.
type MailSenderInterface interface {
	SendVerification(to, username, link string) error
	SendPasswordReset(to, username, link string) error
}

// Worker drains the mail queue and hands each job to the SMTP sender.
type Worker struct {
	Channel *amqp.Channel
	Sender  MailSenderInterface
}

func NewWorker(ch *amqp.Channel, sender MailSenderInterface) *Worker {
	return &Worker{Channel: ch, Sender: sender}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("rabbitmq consumer registration failed: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job MailJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("[mail-worker] malformed job, rejecting: %s", err)
				// No requeue: a rotten message would loop forever.
				d.Nack(false, false)
				continue
			}

			if err := w.send(job); err != nil {
				log.Printf("[mail-worker] send failed (%s to %s): %s", job.Kind, job.To, err)
				d.Nack(false, false) // off to the DLQ
			} else {
				log.Printf("[mail-worker] sent %s mail to %s", job.Kind, job.To)
				d.Ack(false)
			}
		}
	}()

	log.Printf("[mail-worker] waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) send(job MailJob) error {
	switch job.Kind {
	case MailKindVerification:
		return w.Sender.SendVerification(job.To, job.Username, job.Link)
	case MailKindPasswordReset:
		return w.Sender.SendPasswordReset(job.To, job.Username, job.Link)
	default:
		// Unknown kind: ack it away, nobody can handle it.
		log.Printf("[mail-worker] unknown mail kind %q, dropping", job.Kind)
		return nil
	}
}
