package analytics

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockRepo struct {
	txs   []Transaction
	err   error
	calls int
}

func (m *mockRepo) ListBetween(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	m.calls++
	return m.txs, m.err
}

func newTestService(t *testing.T, repo Repository) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestCategoryAnalysisCaches(t *testing.T) {
	repo := &mockRepo{txs: sampleTransactions()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	r := DayRange{Start: day(2026, 3, 1), End: day(2026, 3, 31)}

	result, err := svc.CategoryAnalysis(ctx, r, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(result.Buckets))
	}
	if result.Pie.SalesTotal != 150 || result.Pie.ExpensesTotal != 30 {
		t.Fatalf("unexpected pie: %+v", result.Pie)
	}

	if _, err := svc.CategoryAnalysis(ctx, r, ""); err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected repository hit once, got %d", repo.calls)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &mockRepo{txs: sampleTransactions()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	r := DayRange{Start: day(2026, 3, 1), End: day(2026, 3, 31)}

	if _, err := svc.CategoryAnalysis(ctx, r, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.CategoryAnalysis(ctx, r, ""); err != nil {
		t.Fatalf("unexpected error after bump: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("expected reload after invalidation, got %d repository hits", repo.calls)
	}
}

func TestTopProductsRejectsUnknownCriterion(t *testing.T) {
	repo := &mockRepo{txs: sampleTransactions()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	if _, err := svc.TopProducts(context.Background(), DayRange{}, "price", 3); err == nil {
		t.Fatal("expected error for unknown criterion")
	}
}

func TestTopProductsRanksSalesOnly(t *testing.T) {
	repo := &mockRepo{txs: sampleTransactions()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	products, err := svc.TopProducts(context.Background(), DayRange{}, "amount", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "A" || products[0].TotalAmount != 150 {
		t.Fatalf("expected single sale bucket A:150, got %+v", products)
	}
}

func TestSummaryComparesAdjacentPeriods(t *testing.T) {
	now := day(2026, 3, 15)
	repo := &mockRepo{txs: []Transaction{
		{ID: 1, Type: TypeSale, Amount: 300, CreatedAt: day(2026, 3, 10), ArticleName: "A"},
		{ID: 2, Type: TypeSale, Amount: 200, CreatedAt: day(2026, 2, 10), ArticleName: "A"},
		{ID: 3, Type: TypeExpense, Amount: 50, CreatedAt: day(2026, 3, 12), ArticleName: "Rent"},
	}}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	summary, err := svc.Summary(context.Background(), "month", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Revenue.Current != 300 || summary.Revenue.Previous != 200 {
		t.Fatalf("unexpected revenue comparison: %+v", summary.Revenue)
	}
	if summary.Revenue.ChangeType != ChangeIncrease {
		t.Fatalf("expected increase, got %s", summary.Revenue.ChangeType)
	}
	if summary.Expenses.Previous != 0 || !summary.Expenses.Badge.IsNew {
		t.Fatalf("expected NEW expenses badge, got %+v", summary.Expenses)
	}
	if summary.Net.Current != 250 {
		t.Fatalf("expected net 250, got %.2f", summary.Net.Current)
	}
}

func TestSummaryUnknownPeriod(t *testing.T) {
	repo := &mockRepo{}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	if _, err := svc.Summary(context.Background(), "quarter", time.Now()); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func TestSeriesUsesWindow(t *testing.T) {
	repo := &mockRepo{txs: sampleTransactions()}
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	series, err := svc.Series(context.Background(), DayRange{Start: day(2026, 3, 2), End: day(2026, 3, 2)}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 || series[0].Date != "2026-03-02" {
		t.Fatalf("expected one point for 2026-03-02, got %+v", series)
	}
}
