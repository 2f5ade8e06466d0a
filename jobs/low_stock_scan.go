package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/trade-manager/trade-manager/internal/jobs"
	"github.com/trade-manager/trade-manager/internal/notifications"
	"github.com/trade-manager/trade-manager/internal/stock"
)

const digestNameLimit = 10

// StockLowScanJob sweeps stock levels on a schedule and broadcasts a digest
// notification. It backstops the event-driven per-movement alerts for levels
// that drifted low while no movements were posted.
type StockLowScanJob struct {
	Stock    *stock.Service
	Notifier *notifications.Service
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewStockLowScanJob wires dependencies for the low-stock sweep handler.
func NewStockLowScanJob(stockSvc *stock.Service, notifier *notifications.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockLowScanJob {
	return &StockLowScanJob{Stock: stockSvc, Notifier: notifier, Logger: logger, Metrics: metrics}
}

// Handle processes low-stock scan tasks.
func (j *StockLowScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Stock == nil || j.Notifier == nil {
		return errors.New("stock low scan: handler not configured")
	}
	var payload StockLowScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStockLowScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()

	levels, err := j.lowLevels(ctx, payload.Threshold)
	if err != nil {
		resultErr = err
		logger.Error("scan stock levels", slog.Any("error", err))
		return resultErr
	}
	if len(levels) == 0 {
		logger.Info("low stock scan found nothing")
		return resultErr
	}

	title := fmt.Sprintf("%d article(s) low on stock", len(levels))
	if _, err := j.Notifier.Notify(ctx, 0, notifications.KindStockLow, title, digestBody(levels)); err != nil {
		resultErr = err
		logger.Error("broadcast low stock digest", slog.Any("error", err))
		return resultErr
	}

	logger.Info("low stock scan complete", slog.Int("levels", len(levels)))
	return resultErr
}

func (j *StockLowScanJob) lowLevels(ctx context.Context, threshold float64) ([]stock.Level, error) {
	if threshold <= 0 {
		return j.Stock.LowLevels(ctx)
	}
	levels, err := j.Stock.Levels(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]stock.Level, 0, len(levels))
	for _, lvl := range levels {
		if lvl.Quantity <= threshold {
			low = append(low, lvl)
		}
	}
	return low, nil
}

func digestBody(levels []stock.Level) string {
	var b strings.Builder
	for i, lvl := range levels {
		if i == digestNameLimit {
			fmt.Fprintf(&b, "and %d more", len(levels)-digestNameLimit)
			break
		}
		name := lvl.ArticleName
		if name == "" {
			name = fmt.Sprintf("article %d", lvl.ArticleID)
		}
		if lvl.VariationName != "" {
			name += " / " + lvl.VariationName
		}
		fmt.Fprintf(&b, "%s: %.0f left\n", name, lvl.Quantity)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (j *StockLowScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockLowScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
