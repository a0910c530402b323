package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/edudemy/edudemy/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	// TaskNotificationDispatch delivers a stored notification to its recipient.
	TaskNotificationDispatch = "notify:dispatch"
	// TaskNotificationCleanup purges old read notifications.
	TaskNotificationCleanup = "notify:cleanup"
)

// NotificationDispatchPayload references a stored notification row.
type NotificationDispatchPayload struct {
	NotificationID int64 `json:"notification_id"`
}

// NewNotificationDispatchTask constructs an Asynq task for notification delivery.
func NewNotificationDispatchTask(notificationID int64) (*asynq.Task, error) {
	body, err := json.Marshal(NotificationDispatchPayload{NotificationID: notificationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body, asynq.Queue(QueueDefault)), nil
}

// NotificationCleanupPayload controls the purge window.
type NotificationCleanupPayload struct {
	DaysOld int `json:"days_old"`
}

// NewNotificationCleanupTask constructs an Asynq task for the nightly purge.
func NewNotificationCleanupTask(daysOld int) (*asynq.Task, error) {
	body, err := json.Marshal(NotificationCleanupPayload{DaysOld: daysOld})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationCleanup, body, asynq.Queue(QueueDefault)), nil
}

// NotificationCleanupJob deletes read notifications older than the cutoff.
type NotificationCleanupJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewNotificationCleanupJob initialises the cleanup handler.
func NewNotificationCleanupJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the purge.
func (j *NotificationCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("notification cleanup: handler not configured")
	}
	var payload NotificationCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.DaysOld <= 0 {
		payload.DaysOld = 30
	}

	tracker := j.metrics().Track(TaskNotificationCleanup)
	defer func() {
		err = tracker.End(err)
	}()

	if j.Pool == nil {
		return errors.New("notification cleanup: pool not configured")
	}

	cutoff := j.now().AddDate(0, 0, -payload.DaysOld)
	tag, execErr := j.Pool.Exec(ctx, `DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, cutoff)
	if execErr != nil {
		j.logger().Error("cleanup failed", slog.Any("error", execErr))
		return execErr
	}

	j.logger().Info("purged notifications",
		slog.Int64("deleted", tag.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

func (j *NotificationCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskNotificationCleanup))
	}
	return slog.Default().With(slog.String("job", TaskNotificationCleanup))
}

func (j *NotificationCleanupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *NotificationCleanupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
