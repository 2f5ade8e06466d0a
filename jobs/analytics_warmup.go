package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/trade-manager/trade-manager/internal/analytics"
	jobmetrics "github.com/trade-manager/trade-manager/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

var warmupPeriods = []string{"day", "week", "month", "year"}

// AnalyticsWarmupJob pre-populates the analytics caches so dashboards load
// from Redis instead of recomputing after every invalidation.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: analyticsSvc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes analytics warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	periods := payload.Periods
	if len(periods) == 0 {
		periods = warmupPeriods
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting analytics warmup", slog.Int("periods", len(periods)))

	now := j.now()
	for _, period := range periods {
		if _, err := j.Analytics.Summary(ctx, period, now); err != nil {
			resultErr = err
			logger.Error("warm summary", slog.String("period", period), slog.Any("error", err))
			return resultErr
		}
	}

	// All-time category and top-product views back the landing dashboard.
	if _, err := j.Analytics.CategoryAnalysis(ctx, analytics.DayRange{}, ""); err != nil {
		resultErr = err
		logger.Error("warm categories", slog.Any("error", err))
		return resultErr
	}
	if _, err := j.Analytics.TopProducts(ctx, analytics.DayRange{}, "quantity", 0); err != nil {
		resultErr = err
		logger.Error("warm top products", slog.Any("error", err))
		return resultErr
	}

	logger.Info("analytics warmup complete", slog.Int("periods", len(periods)))
	return resultErr
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *AnalyticsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
