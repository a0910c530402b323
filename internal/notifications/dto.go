package notifications

import "time"

type createNotificationRequest struct {
	UserID  int64          `json:"user_id" validate:"required"`
	Title   string         `json:"title" validate:"required"`
	Message string         `json:"message" validate:"required"`
	Type    string         `json:"notification_type"`
	Data    map[string]any `json:"data"`
}

type notificationResponse struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"notification_type"`
	IsRead    bool           `json:"is_read"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toNotificationResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}
