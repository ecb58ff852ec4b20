package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRatingReminder = "booking:rating_reminder"

// RatingReminderDelay is how long after completion the customer is nudged to rate.
const RatingReminderDelay = 2 * time.Hour

// RatingReminderPayload identifies the completed booking to remind about.
type RatingReminderPayload struct {
	BookingID string `json:"bookingId"`
}

func NewRatingReminderTask(bookingID string, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(RatingReminderPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRatingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessIn(delay),
		asynq.MaxRetry(3),
		asynq.TaskID("rating-reminder:" + bookingID),
	}
	return task, opts, nil
}

func ParseRatingReminder(task *asynq.Task) (RatingReminderPayload, error) {
	var p RatingReminderPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
