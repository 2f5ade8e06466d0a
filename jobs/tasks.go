package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskAnalyticsWarmup pre-computes the analytics caches so the first
	// dashboard request after an idle period does not pay the load cost.
	TaskAnalyticsWarmup = "analytics:warmup"
	// TaskStockLowScan sweeps stock levels and raises a digest notification
	// for everything at or below the low-stock threshold.
	TaskStockLowScan = "stock:low_scan"
)

// AnalyticsWarmupPayload selects which summary periods to warm. Empty means
// all supported periods.
type AnalyticsWarmupPayload struct {
	Periods []string `json:"periods,omitempty"`
}

// NewAnalyticsWarmupTask constructs an Asynq task for analytics warmup.
func NewAnalyticsWarmupTask(periods ...string) (*asynq.Task, error) {
	data, err := json.Marshal(AnalyticsWarmupPayload{Periods: periods})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}

// StockLowScanPayload carries an optional threshold override. Zero keeps the
// threshold the stock service was configured with.
type StockLowScanPayload struct {
	Threshold float64 `json:"threshold,omitempty"`
}

// NewStockLowScanTask constructs an Asynq task for the low-stock sweep.
func NewStockLowScanTask(threshold float64) (*asynq.Task, error) {
	data, err := json.Marshal(StockLowScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockLowScan, data), nil
}
