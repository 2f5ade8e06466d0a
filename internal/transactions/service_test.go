package transactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trade-manager/trade-manager/internal/events"
	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

type fakeStore struct {
	nextID    int64
	rows      map[int64]Transaction
	names     map[int64]string
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[int64]Transaction{}, names: map[int64]string{}}
}

func (f *fakeStore) Insert(ctx context.Context, tx Transaction) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	tx.ID = f.nextID
	f.rows[tx.ID] = tx
	return tx.ID, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Transaction, error) {
	tx, ok := f.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	// Reads resolve display names the way the SQL joins do.
	if tx.ArticleID != nil {
		tx.ArticleName = f.names[*tx.ArticleID]
	}
	return &tx, nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Transaction, int, error) {
	out := []Transaction{}
	for _, tx := range f.rows {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, tx)
	}
	return out, len(out), nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeStock struct {
	recorded   []float64
	restored   []float64
	err        error
	restoreErr error
}

func (f *fakeStock) RecordSale(ctx context.Context, articleID int64, variationID *int64, qty float64) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, qty)
	return nil
}

func (f *fakeStock) RestoreSale(ctx context.Context, articleID int64, variationID *int64, qty float64) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = append(f.restored, qty)
	return nil
}

type fakeBus struct {
	topics   []string
	payloads []any
}

func (f *fakeBus) Publish(ctx context.Context, topic string, payload any) error {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeInvalidator struct {
	bumps int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.bumps++
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestRecordSaleDecrementsStockAndBumpsCache(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{}
	bus := &fakeBus{}
	inv := &fakeInvalidator{}
	svc := NewService(store, stock, bus, inv)

	tx, err := svc.Record(context.Background(), RecordRequest{
		Type:      TypeSale,
		Amount:    120,
		Quantity:  ptr(3.0),
		ArticleID: ptr(int64(7)),
	}, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), tx.ID)
	require.Equal(t, []float64{3}, stock.recorded)
	require.Equal(t, 1, inv.bumps)
	require.Equal(t, []string{events.TopicTransactionRecorded}, bus.topics)
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeStock{}, &fakeBus{}, &fakeInvalidator{})

	_, err := svc.Record(context.Background(), RecordRequest{Type: "refund", Amount: 10}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Record(context.Background(), RecordRequest{Type: TypeSale, Amount: -5}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Record(context.Background(), RecordRequest{Type: TypeSale, Amount: 10}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation, "sale without article must fail")
}

func TestRecordAbortsWhenStockGuardFails(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{err: httpx.ErrValidation}
	svc := NewService(store, stock, &fakeBus{}, &fakeInvalidator{})

	_, err := svc.Record(context.Background(), RecordRequest{
		Type:      TypeSale,
		Amount:    50,
		Quantity:  ptr(2.0),
		ArticleID: ptr(int64(1)),
	}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, store.rows, "no row may be written when the stock guard fails")
}

func TestRecordCompensatesStockWhenInsertFails(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection reset")
	stock := &fakeStock{}
	inv := &fakeInvalidator{}
	svc := NewService(store, stock, &fakeBus{}, inv)

	_, err := svc.Record(context.Background(), RecordRequest{
		Type:      TypeSale,
		Amount:    120,
		Quantity:  ptr(3.0),
		ArticleID: ptr(int64(7)),
	}, 1)
	require.Error(t, err)
	require.Equal(t, []float64{3}, stock.recorded)
	require.Equal(t, []float64{3}, stock.restored, "the consumed units must be handed back")
	require.Zero(t, inv.bumps)
}

func TestRecordPublishesResolvedArticleName(t *testing.T) {
	store := newFakeStore()
	store.names[7] = "Rice 25kg"
	bus := &fakeBus{}
	svc := NewService(store, &fakeStock{}, bus, &fakeInvalidator{})

	tx, err := svc.Record(context.Background(), RecordRequest{
		Type:      TypeSale,
		Amount:    5000,
		Quantity:  ptr(1.0),
		ArticleID: ptr(int64(7)),
	}, 1)
	require.NoError(t, err)
	require.Equal(t, "Rice 25kg", tx.ArticleName)

	require.Len(t, bus.payloads, 1)
	evt, ok := bus.payloads[0].(events.TransactionRecorded)
	require.True(t, ok)
	require.Equal(t, "Rice 25kg", evt.ArticleName)
}

func TestExpenseSkipsStock(t *testing.T) {
	stock := &fakeStock{}
	svc := NewService(newFakeStore(), stock, &fakeBus{}, &fakeInvalidator{})

	_, err := svc.Record(context.Background(), RecordRequest{Type: TypeExpense, Amount: 30}, 1)
	require.NoError(t, err)
	require.Empty(t, stock.recorded)
}

func TestDeleteRestoresStock(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{}
	bus := &fakeBus{}
	svc := NewService(store, stock, bus, &fakeInvalidator{})

	tx, err := svc.Record(context.Background(), RecordRequest{
		Type:      TypeSale,
		Amount:    80,
		Quantity:  ptr(2.0),
		ArticleID: ptr(int64(3)),
	}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), tx.ID))
	require.Equal(t, []float64{2}, stock.restored)
	require.Contains(t, bus.topics, events.TopicTransactionDeleted)

	err = svc.Delete(context.Background(), tx.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteStillInvalidatesWhenRestoreFails(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStock{}
	bus := &fakeBus{}
	inv := &fakeInvalidator{}
	svc := NewService(store, stock, bus, inv)

	tx, err := svc.Record(context.Background(), RecordRequest{
		Type:      TypeSale,
		Amount:    80,
		Quantity:  ptr(2.0),
		ArticleID: ptr(int64(3)),
	}, 1)
	require.NoError(t, err)
	bumpsBefore := inv.bumps

	stock.restoreErr = errors.New("level row locked")
	err = svc.Delete(context.Background(), tx.ID)
	require.Error(t, err)
	require.Equal(t, bumpsBefore+1, inv.bumps, "the deleted row must leave the cache regardless")
	require.Contains(t, bus.topics, events.TopicTransactionDeleted)
}

func TestListInvertedWindowIsEmpty(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeStock{}, &fakeBus{}, &fakeInvalidator{})

	txs, page, err := svc.List(context.Background(), ListFilter{
		From: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, txs)
	require.Empty(t, txs)
	require.Equal(t, 0, page.Total)
}

func TestListRejectsUnknownType(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeStock{}, &fakeBus{}, &fakeInvalidator{})
	_, _, err := svc.List(context.Background(), ListFilter{Type: "refund"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
