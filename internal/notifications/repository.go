package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for notifications.
type Repository interface {
	Create(ctx context.Context, n Notification) (int64, error)
	Get(ctx context.Context, id int64) (*Notification, error)
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const notificationColumns = `id, user_id, title, message, notification_type, is_read, data, created_at`

func (r *repository) Create(ctx context.Context, n Notification) (int64, error) {
	var data []byte
	if n.Data != nil {
		encoded, err := json.Marshal(n.Data)
		if err != nil {
			return 0, err
		}
		data = encoded
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, notification_type, is_read, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, n.UserID, n.Title, n.Message, string(n.Type), n.IsRead, data).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Notification, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM notifications WHERE id = $1`, notificationColumns), id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *repository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE user_id = $1`, notificationColumns)
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	var typ string
	var data []byte
	var createdAt pgtype.Timestamptz

	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.IsRead, &data, &createdAt); err != nil {
		return nil, err
	}
	n.Type = Type(typ)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	if createdAt.Valid {
		n.CreatedAt = createdAt.Time
	}
	return &n, nil
}

var _ Repository = (*repository)(nil)
