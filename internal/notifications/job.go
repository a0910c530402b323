package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/edudemy/edudemy/internal/users"
	"github.com/edudemy/edudemy/jobs"
)

// DispatchJob fans a stored notification out to email. Recipients without
// an account email only get the in-app row.
type DispatchJob struct {
	service *Service
	users   *users.Service
	queue   *jobs.Client
	logger  *slog.Logger
}

// NewDispatchJob constructs a job handler.
func NewDispatchJob(service *Service, usersService *users.Service, queue *jobs.Client, logger *slog.Logger) *DispatchJob {
	return &DispatchJob{service: service, users: usersService, queue: queue, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *DispatchJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.NotificationID == 0 {
		return asynq.SkipRetry
	}

	n, err := j.service.Get(ctx, payload.NotificationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Row purged between enqueue and processing; nothing to deliver.
			return asynq.SkipRetry
		}
		return err
	}

	recipient, err := j.users.Get(ctx, n.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return asynq.SkipRetry
		}
		return err
	}
	if recipient.Email == "" || j.queue == nil {
		return nil
	}

	if _, err := j.queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      recipient.Email,
		Subject: n.Title,
		Body:    n.Message,
	}); err != nil {
		if j.logger != nil {
			j.logger.Error("notification email fan-out", slog.Int64("notification_id", n.ID), slog.Any("error", err))
		}
		return err
	}
	return nil
}
