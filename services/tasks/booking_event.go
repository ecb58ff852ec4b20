package tasks

import (
	"encoding/json"

	"nestly/models"

	"github.com/hibiken/asynq"
)

const TypeBookingEvent = "booking:event"

// NewBookingEventTask wraps a booking event for delivery by the worker.
// The task id makes re-publishing the same event a no-op.
func NewBookingEventTask(event models.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEvent, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.TaskID(string(event.Type) + ":" + event.BookingID),
	}
	return task, opts, nil
}

func ParseBookingEvent(task *asynq.Task) (models.BookingEvent, error) {
	var e models.BookingEvent
	err := json.Unmarshal(task.Payload(), &e)
	return e, err
}
