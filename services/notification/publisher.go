package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestly/models"
	"nestly/services/tasks"

	"github.com/hibiken/asynq"
)

// AsynqPublisher queues booking events for the notification worker.
type AsynqPublisher struct {
	Client        Enqueuer
	ReminderDelay time.Duration
}

func (p *AsynqPublisher) PublishBookingEvent(ctx context.Context, event models.BookingEvent) error {
	task, opts, err := tasks.NewBookingEventTask(event)
	if err != nil {
		return fmt.Errorf("failed to build booking event task: %w", err)
	}
	if err := p.enqueue(ctx, task, opts); err != nil {
		return err
	}

	if event.Type == models.EventBookingCompleted {
		delay := p.ReminderDelay
		if delay <= 0 {
			delay = tasks.RatingReminderDelay
		}
		task, opts, err := tasks.NewRatingReminderTask(event.BookingID, delay)
		if err != nil {
			return fmt.Errorf("failed to build rating reminder task: %w", err)
		}
		return p.enqueue(ctx, task, opts)
	}
	return nil
}

func (p *AsynqPublisher) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	return nil
}
