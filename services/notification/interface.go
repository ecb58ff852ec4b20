package notification

import (
	"context"

	"nestly/database/repository"
	"nestly/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PushSender delivers a notification to a device token.
type PushSender interface {
	SendPush(ctx context.Context, token string, n models.Notification) error
}

// SMSSender delivers a notification body to an E.164 phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Enqueuer is the subset of *asynq.Client used to publish tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns queued booking events into pushes and SMS messages.
type Dispatcher struct {
	Bookings  repository.BookingRepository
	Providers repository.ProviderRepository
	Push      PushSender
	SMS       SMSSender
	Logger    *zap.Logger
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}
