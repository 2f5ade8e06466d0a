package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/trade-manager/trade-manager/internal/analytics"
	"github.com/trade-manager/trade-manager/internal/stock"
)

type stubAnalyticsRepo struct {
	calls int
}

func (r *stubAnalyticsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]analytics.Transaction, error) {
	r.calls++
	return []analytics.Transaction{
		{ID: 1, Type: analytics.TypeSale, ArticleName: "Rice", Amount: 100, CreatedAt: time.Now().UTC()},
	}, nil
}

func TestAnalyticsWarmupTouchesEveryPeriod(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	svc := analytics.NewService(repo, nil)
	job := NewAnalyticsWarmupJob(svc, slog.New(slog.DiscardHandler), nil)

	task, err := NewAnalyticsWarmupTask()
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Greater(t, repo.calls, 0)
}

func TestAnalyticsWarmupRejectsGarbagePayload(t *testing.T) {
	job := NewAnalyticsWarmupJob(analytics.NewService(&stubAnalyticsRepo{}, nil), slog.New(slog.DiscardHandler), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskAnalyticsWarmup, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDigestBodyTruncates(t *testing.T) {
	levels := make([]stock.Level, 0, digestNameLimit+3)
	for i := 0; i < digestNameLimit+3; i++ {
		levels = append(levels, stock.Level{ArticleID: int64(i + 1), ArticleName: "Item", Quantity: 1})
	}

	body := digestBody(levels)
	require.Contains(t, body, "and 3 more")
}
