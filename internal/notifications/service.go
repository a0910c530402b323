package notifications

import (
	"context"
	"log/slog"
	"strings"

	"github.com/edudemy/edudemy/jobs"
)

// Service wraps notification business rules. Delivery beyond the stored
// row (email fan-out) happens asynchronously through the job queue.
type Service struct {
	repo   Repository
	queue  *jobs.Client
	logger *slog.Logger
}

// NewService constructs a Service. The queue client is optional; without
// it notifications are stored but not dispatched further.
func NewService(repo Repository, queue *jobs.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, queue: queue, logger: logger}
}

// Notify stores a notification and enqueues its delivery.
func (s *Service) Notify(ctx context.Context, n Notification) (*Notification, error) {
	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if !n.Type.Valid() {
		n.Type = TypeGeneral
	}
	id, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	if s.queue != nil {
		if _, err := s.queue.EnqueueNotificationDispatch(ctx, id); err != nil && s.logger != nil {
			// The row is stored; delivery will be retried by the next dispatch.
			s.logger.Warn("enqueue notification dispatch", slog.Int64("notification_id", id), slog.Any("error", err))
		}
	}
	return s.repo.Get(ctx, id)
}

// Get fetches a notification by id.
func (s *Service) Get(ctx context.Context, id int64) (*Notification, error) {
	return s.repo.Get(ctx, id)
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListForUser(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead flags a single notification as read. Users can only touch
// their own rows.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead flags every unread notification for the user.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// CountUnread returns the user's unread badge count.
func (s *Service) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
