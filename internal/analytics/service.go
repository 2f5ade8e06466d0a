package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Repository loads transaction snapshots with article and collaborator names
// already resolved. Zero bounds leave that side of the window open.
type Repository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]Transaction, error)
}

// Service coordinates the analytics pipeline with the cache layer. All
// derivations are pure functions over the loaded snapshot, so two calls with
// the same data produce the same result.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CategoryResult is the grouped view for a filtered window.
type CategoryResult struct {
	Buckets []Bucket    `json:"buckets"`
	Pie     PieSummary  `json:"pie"`
	Shares  []TypeShare `json:"shares"`
}

// CategoryAnalysis filters the snapshot to the window and type, then groups
// by article with the sale/expense split alongside.
func (s *Service) CategoryAnalysis(ctx context.Context, r DayRange, txType TransactionType) (CategoryResult, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return CategoryResult{}, err
		}
		filtered := FilterTransactions(txs, r, txType)
		return CategoryResult{
			Buckets: GroupByArticle(filtered),
			Pie:     Pie(filtered),
			Shares:  SharesByType(filtered),
		}, nil
	}
	var result CategoryResult
	if err := s.fetch(ctx, keyCategory(r)+":"+string(txType), &result, loader); err != nil {
		return CategoryResult{}, err
	}
	return result, nil
}

// TopProducts ranks articles over the window by the requested criterion,
// "quantity" or "amount".
func (s *Service) TopProducts(ctx context.Context, r DayRange, by string, limit int) ([]TopProduct, error) {
	if by != "quantity" && by != "amount" {
		return nil, fmt.Errorf("analytics: unknown ranking criterion %q", by)
	}
	if limit <= 0 {
		limit = 5
	}
	loader := func(ctx context.Context) (interface{}, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}
		sales := FilterTransactions(txs, r, TypeSale)
		if by == "amount" {
			return TopProductsByAmount(sales, limit), nil
		}
		return TopProductsByQuantity(sales, limit), nil
	}
	products := []TopProduct{}
	if err := s.fetch(ctx, keyTopProducts(r, by, limit), &products, loader); err != nil {
		return nil, err
	}
	return products, nil
}

// Series returns the chart-ready daily sales/expense series for the window.
func (s *Service) Series(ctx context.Context, r DayRange, txType TransactionType) ([]SeriesPoint, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		txs, err := s.load(ctx, r)
		if err != nil {
			return nil, err
		}
		return DailySeries(FilterTransactions(txs, r, txType)), nil
	}
	series := []SeriesPoint{}
	if err := s.fetch(ctx, keySeries(r, txType), &series, loader); err != nil {
		return nil, err
	}
	return series, nil
}

// SummaryMetric pairs a comparison with its display classification.
type SummaryMetric struct {
	Comparison
	Badge ChangeBadge `json:"badge"`
}

// Summary compares the requested period against the one before it.
type Summary struct {
	Period   string        `json:"period"`
	Revenue  SummaryMetric `json:"revenue"`
	Expenses SummaryMetric `json:"expenses"`
	Net      SummaryMetric `json:"net"`
	Count    SummaryMetric `json:"count"`
}

// Summary loads the current and previous periods concurrently and compares
// revenue, expenses, net, and transaction count between them.
func (s *Service) Summary(ctx context.Context, period string, now time.Time) (Summary, error) {
	current, previous, err := periodWindows(period, now)
	if err != nil {
		return Summary{}, err
	}
	loader := func(ctx context.Context) (interface{}, error) {
		var curTxs, prevTxs []Transaction
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			txs, err := s.load(gctx, current)
			if err != nil {
				return err
			}
			curTxs = FilterTransactions(txs, current, "")
			return nil
		})
		g.Go(func() error {
			txs, err := s.load(gctx, previous)
			if err != nil {
				return err
			}
			prevTxs = FilterTransactions(txs, previous, "")
			return nil
		})
		if err := g.Wait(); err != nil {
			return Summary{}, err
		}
		cur, prev := Pie(curTxs), Pie(prevTxs)
		return Summary{
			Period:   period,
			Revenue:  metric(Compare(cur.SalesTotal, prev.SalesTotal)),
			Expenses: metric(Compare(cur.ExpensesTotal, prev.ExpensesTotal)),
			Net:      metric(Compare(cur.SalesTotal-cur.ExpensesTotal, prev.SalesTotal-prev.ExpensesTotal)),
			Count:    metric(Compare(float64(len(curTxs)), float64(len(prevTxs)))),
		}, nil
	}
	var summary Summary
	key := keySummary(period) + ":" + dayOf(now).Format("2006-01-02")
	if err := s.fetch(ctx, key, &summary, loader); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// Invalidate bumps the cache version after a data mutation.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}

func (s *Service) load(ctx context.Context, r DayRange) ([]Transaction, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("analytics: repository not configured")
	}
	return s.repo.ListBetween(ctx, r.Start, r.End)
}

func (s *Service) fetch(ctx context.Context, keyBase string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	// Cache methods tolerate a nil receiver and fall back to the loader.
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func metric(c Comparison) SummaryMetric {
	return SummaryMetric{Comparison: c, Badge: c.Classify()}
}

// periodWindows derives the current window for a named period and the
// adjacent window of equal length right before it.
func periodWindows(period string, now time.Time) (DayRange, DayRange, error) {
	today := dayOf(now)
	switch period {
	case "day":
		return DayRange{Start: today, End: today},
			DayRange{Start: today.AddDate(0, 0, -1), End: today.AddDate(0, 0, -1)}, nil
	case "week":
		start := today.AddDate(0, 0, -6)
		return DayRange{Start: start, End: today},
			DayRange{Start: start.AddDate(0, 0, -7), End: start.AddDate(0, 0, -1)}, nil
	case "month":
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		prevStart := start.AddDate(0, -1, 0)
		return DayRange{Start: start, End: today},
			DayRange{Start: prevStart, End: start.AddDate(0, 0, -1)}, nil
	case "year":
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		prevStart := start.AddDate(-1, 0, 0)
		return DayRange{Start: start, End: today},
			DayRange{Start: prevStart, End: start.AddDate(0, 0, -1)}, nil
	default:
		return DayRange{}, DayRange{}, fmt.Errorf("analytics: unknown period %q", period)
	}
}
