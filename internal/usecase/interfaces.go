package usecase

import (
	"context"

	"github.com/xavierca1/leadhub/internal/infra/queue"
)

// MailQueueInterface hands a mail job to the broker. Sending is
// fire-and-forget: a failed publish is logged by the caller and never
// blocks the request that triggered it.
type MailQueueInterface interface {
	PublishMail(ctx context.Context, job queue.MailJob) error
}

// LinkSignerInterface produces and checks the tamper-evident,
// time-limited signature embedded in e-mail verification links.
type LinkSignerInterface interface {
	Sign(userID int64, email string) (string, error)
	Verify(signature string, userID int64, email string) error
}
