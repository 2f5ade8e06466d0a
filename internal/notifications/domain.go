package notifications

import "time"

// Kind classifies a notification.
type Kind string

const (
	KindStockLow    Kind = "stock_low"
	KindTransaction Kind = "transaction"
	KindSystem      Kind = "system"
)

// Notification is one inbox entry. UserID zero addresses every user.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Kind      Kind      `json:"kind" db:"kind"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
