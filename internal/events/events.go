// Package events provides the typed pub/sub channel used for
// cross-component signaling. Payloads are documented structs and consumers
// subscribe per topic, so producers and consumers are statically known.
package events

import "time"

// Topic names. Every publisher and subscriber references these constants.
const (
	TopicTransactionRecorded  = "transaction.recorded"
	TopicTransactionDeleted   = "transaction.deleted"
	TopicStockLow             = "stock.low"
	TopicNotificationCreated  = "notification.created"
	TopicAnalyticsInvalidated = "analytics.invalidated"
)

// TransactionRecorded is published after a transaction is persisted.
type TransactionRecorded struct {
	ID             int64     `json:"id"`
	Type           string    `json:"type"`
	Amount         float64   `json:"amount"`
	Quantity       float64   `json:"quantity"`
	ArticleName    string    `json:"article_name,omitempty"`
	CollaboratorID *int64    `json:"collaborator_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TransactionDeleted is published after a transaction is removed.
type TransactionDeleted struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StockLow is published when a movement leaves an article below threshold.
type StockLow struct {
	ArticleID   int64   `json:"article_id"`
	VariationID *int64  `json:"variation_id,omitempty"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Threshold   float64 `json:"threshold"`
}

// NotificationCreated is published when a notification is stored for a user.
type NotificationCreated struct {
	NotificationID int64  `json:"notification_id"`
	UserID         int64  `json:"user_id"`
	Kind           string `json:"kind"`
}

// AnalyticsInvalidated carries the new cache version after a bump.
type AnalyticsInvalidated struct {
	Version int64 `json:"version"`
}
