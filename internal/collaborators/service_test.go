package collaborators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

type fakeStore struct {
	nextID int64
	rows   map[int64]Collaborator
	sales  map[int64]float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[int64]Collaborator{}, sales: map[int64]float64{}}
}

func (f *fakeStore) Insert(ctx context.Context, c Collaborator) (int64, error) {
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = c
	return c.ID, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Collaborator, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) List(ctx context.Context, onlyActive bool) ([]Collaborator, error) {
	out := []Collaborator{}
	for id := int64(1); id <= f.nextID; id++ {
		c, ok := f.rows[id]
		if !ok {
			continue
		}
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	c, ok := f.rows[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["share_percent"]; ok {
		c.SharePercent = v.(float64)
	}
	if v, ok := updates["is_active"]; ok {
		c.IsActive = v.(bool)
	}
	f.rows[id] = c
	return nil
}

func (f *fakeStore) SumSales(ctx context.Context, from, to time.Time) (map[int64]float64, error) {
	return f.sales, nil
}

func TestCreateAndUpdate(t *testing.T) {
	svc := NewService(newFakeStore())

	c, err := svc.Create(context.Background(), CreateRequest{Name: "Ana", SharePercent: 20})
	require.NoError(t, err)
	require.True(t, c.IsActive)
	require.Equal(t, 20.0, c.SharePercent)

	share := 35.0
	updated, err := svc.Update(context.Background(), c.ID, UpdateRequest{SharePercent: &share})
	require.NoError(t, err)
	require.Equal(t, 35.0, updated.SharePercent)
	require.Equal(t, "Ana", updated.Name)
}

func TestCreateValidatesShare(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Create(context.Background(), CreateRequest{Name: "Bad", SharePercent: 120})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestEarningsAppliesSharePercent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	a, err := svc.Create(context.Background(), CreateRequest{Name: "Ana", SharePercent: 20})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), CreateRequest{Name: "Ben", SharePercent: 10})
	require.NoError(t, err)
	store.sales[a.ID] = 1000

	earnings, err := svc.Earnings(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, earnings, 2)

	require.Equal(t, 1000.0, earnings[0].Revenue)
	require.Equal(t, 200.0, earnings[0].Payout)

	require.Equal(t, b.ID, earnings[1].CollaboratorID)
	require.Equal(t, 0.0, earnings[1].Revenue, "no sales means zero figures, not omission")
}

func TestEarningsInvertedWindowIsEmpty(t *testing.T) {
	svc := NewService(newFakeStore())
	earnings, err := svc.Earnings(context.Background(),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, earnings)
	require.Empty(t, earnings)
}

func TestUpdateMissing(t *testing.T) {
	svc := NewService(newFakeStore())
	name := "X"
	_, err := svc.Update(context.Background(), 9, UpdateRequest{Name: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
