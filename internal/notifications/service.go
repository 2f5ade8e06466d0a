package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trade-manager/trade-manager/internal/events"
	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

// Store abstracts notification persistence.
type Store interface {
	Insert(ctx context.Context, n Notification) (int64, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Service provides the notification inbox.
type Service struct {
	store  Store
	bus    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a notifications service.
func NewService(store Store, bus Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, bus: bus, logger: logger, now: time.Now}
}

// Notify stores a notification and announces it on the bus.
func (s *Service) Notify(ctx context.Context, userID int64, kind Kind, title, body string) (*Notification, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	n := Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.store.Insert(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	n.ID = id
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.TopicNotificationCreated, events.NotificationCreated{
			NotificationID: id,
			UserID:         userID,
			Kind:           string(kind),
		})
	}
	return &n, nil
}

// Inbox returns the user's notifications, unread first.
func (s *Service) Inbox(ctx context.Context, userID int64, limit int) ([]Notification, int, error) {
	list, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}
	return list, unread, nil
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.store.MarkRead(ctx, userID, id)
}

// MarkAllRead flags all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllRead(ctx, userID)
}

// largeSaleThreshold is the amount above which a recorded sale is worth a
// broadcast.
const largeSaleThreshold = 1000

// ListenEvents subscribes the inbox to the domain topics it materialises.
// Low stock warnings and large sales are broadcast to every user.
func (s *Service) ListenEvents(ctx context.Context, bus *events.Bus) error {
	err := events.Subscribe(ctx, bus, events.TopicStockLow, func(ctx context.Context, evt events.StockLow) {
		name := evt.Name
		if name == "" {
			name = fmt.Sprintf("article %d", evt.ArticleID)
		}
		title := fmt.Sprintf("Low stock: %s", name)
		body := fmt.Sprintf("%.0f left, threshold %.0f", evt.Quantity, evt.Threshold)
		if _, err := s.Notify(ctx, 0, KindStockLow, title, body); err != nil {
			s.logger.Error("store low stock notification", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}
	return events.Subscribe(ctx, bus, events.TopicTransactionRecorded, func(ctx context.Context, evt events.TransactionRecorded) {
		if evt.Type != "sale" || evt.Amount < largeSaleThreshold {
			return
		}
		title := fmt.Sprintf("Large sale: %.0f", evt.Amount)
		body := evt.ArticleName
		if _, err := s.Notify(ctx, 0, KindTransaction, title, body); err != nil {
			s.logger.Error("store large sale notification", slog.Any("error", err))
		}
	})
}
