package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Repository persists notifications in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a notification and returns its ID.
func (r *Repository) Insert(ctx context.Context, n Notification) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("notifications repository not initialised")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO notifications (user_id, kind, title, body, is_read, created_at)
VALUES ($1, $2, $3, $4, false, $5)
RETURNING id`, n.UserID, string(n.Kind), n.Title, n.Body, n.CreatedAt).Scan(&id)
	return id, err
}

// ListForUser returns the user's notifications, unread first, newest within
// each group.
func (r *Repository) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("notifications repository not initialised")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, kind, title, body, is_read, created_at
FROM notifications
WHERE user_id = $1 OR user_id = 0
ORDER BY is_read ASC, created_at DESC, id DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread returns the number of unread notifications for the user.
func (r *Repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("notifications repository not initialised")
	}
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications
WHERE (user_id = $1 OR user_id = 0) AND NOT is_read`, userID).Scan(&count)
	return count, err
}

// MarkRead flags one notification as read.
func (r *Repository) MarkRead(ctx context.Context, userID, id int64) error {
	if r == nil || r.pool == nil {
		return errors.New("notifications repository not initialised")
	}
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true
WHERE id = $1 AND (user_id = $2 OR user_id = 0)`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every notification of the user as read.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("notifications repository not initialised")
	}
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true
WHERE (user_id = $1 OR user_id = 0) AND NOT is_read`, userID)
	return err
}
