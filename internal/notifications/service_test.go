package notifications

import (
	"context"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trade-manager/trade-manager/internal/events"
	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

type fakeStore struct {
	nextID int64
	rows   map[int64]Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[int64]Notification{}}
}

func (f *fakeStore) Insert(ctx context.Context, n Notification) (int64, error) {
	f.nextID++
	n.ID = f.nextID
	f.rows[n.ID] = n
	return n.ID, nil
}

func (f *fakeStore) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	out := []Notification{}
	for _, n := range f.rows {
		if n.UserID == userID || n.UserID == 0 {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsRead != out[j].IsRead {
			return !out[i].IsRead
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit && limit > 0 {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range f.rows {
		if (n.UserID == userID || n.UserID == 0) && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, userID, id int64) error {
	n, ok := f.rows[id]
	if !ok || (n.UserID != userID && n.UserID != 0) {
		return httpx.ErrNotFound
	}
	n.IsRead = true
	f.rows[id] = n
	return nil
}

func (f *fakeStore) MarkAllRead(ctx context.Context, userID int64) error {
	for id, n := range f.rows {
		if n.UserID == userID || n.UserID == 0 {
			n.IsRead = true
			f.rows[id] = n
		}
	}
	return nil
}

type fakeBus struct {
	created []events.NotificationCreated
}

func (f *fakeBus) Publish(ctx context.Context, topic string, payload any) error {
	if topic == events.TopicNotificationCreated {
		f.created = append(f.created, payload.(events.NotificationCreated))
	}
	return nil
}

func newTestService(store Store, bus Publisher) *Service {
	return NewService(store, bus, slog.New(slog.DiscardHandler))
}

func TestNotifyStoresAndAnnounces(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	svc := newTestService(store, bus)

	n, err := svc.Notify(context.Background(), 7, KindSystem, "Hello", "world")
	require.NoError(t, err)
	require.False(t, n.IsRead)
	require.Len(t, bus.created, 1)
	require.Equal(t, n.ID, bus.created[0].NotificationID)
}

func TestNotifyRequiresTitle(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	_, err := svc.Notify(context.Background(), 1, KindSystem, "", "body")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestInboxUnreadFirstAndCount(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	first, err := svc.Notify(ctx, 1, KindSystem, "first", "")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, 1, KindSystem, "second", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, 1, first.ID))

	list, unread, err := svc.Inbox(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, unread)
	require.Equal(t, "second", list[0].Title, "unread comes first")
	require.True(t, list[1].IsRead)
}

func TestMarkReadScopedToUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	n, err := svc.Notify(ctx, 1, KindSystem, "private", "")
	require.NoError(t, err)

	err = svc.MarkRead(ctx, 2, n.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestMarkAllRead(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	_, err := svc.Notify(ctx, 1, KindSystem, "a", "")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, 0, KindStockLow, "broadcast", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllRead(ctx, 1))
	_, unread, err := svc.Inbox(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0, unread)
}
