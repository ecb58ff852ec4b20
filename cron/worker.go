package cron

import (
	"context"
	"fmt"

	"nestly/services/notification"
	"nestly/services/rating"
	"nestly/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker runs the notification task server and the periodic rating audit.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	cron   *cron.Cron
	logger *zap.Logger
}

// NewWorker wires task handlers and schedules the rating audit. An empty
// auditSchedule disables the audit.
func NewWorker(redisOpt asynq.RedisClientOpt, dispatcher *notification.Dispatcher, auditor *rating.Auditor, auditSchedule string, logger *zap.Logger) (*Worker, error) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Warn("Task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingEvent, dispatcher.HandleBookingEvent)
	mux.HandleFunc(tasks.TypeRatingReminder, dispatcher.HandleRatingReminder)

	c := cron.New()
	if auditSchedule != "" && auditor != nil {
		if _, err := c.AddFunc(auditSchedule, func() { runAudit(auditor, logger) }); err != nil {
			return nil, fmt.Errorf("invalid rating audit schedule %q: %w", auditSchedule, err)
		}
	}

	return &Worker{server: srv, mux: mux, cron: c, logger: logger}, nil
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start task worker: %w", err)
	}
	w.cron.Start()
	w.logger.Info("Background worker started")
	return nil
}

// Shutdown stops the cron scheduler and drains in-flight tasks.
func (w *Worker) Shutdown() {
	<-w.cron.Stop().Done()
	w.server.Shutdown()
	w.logger.Info("Background worker stopped")
}

func runAudit(auditor *rating.Auditor, logger *zap.Logger) {
	drifts, err := auditor.Run(context.Background())
	if err != nil {
		logger.Error("Rating audit failed", zap.Error(err))
		return
	}
	logger.Info("Rating audit finished", zap.Int("drifted", len(drifts)))
}
