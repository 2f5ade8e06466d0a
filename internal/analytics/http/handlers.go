package analyticshttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/trade-manager/trade-manager/internal/analytics"
	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

const requestTimeout = 2 * time.Second

const maxTopProducts = 50

// AnalyticsService defines the dashboard data contract used by the handler.
type AnalyticsService interface {
	CategoryAnalysis(ctx context.Context, r analytics.DayRange, txType analytics.TransactionType) (analytics.CategoryResult, error)
	TopProducts(ctx context.Context, r analytics.DayRange, by string, limit int) ([]analytics.TopProduct, error)
	Series(ctx context.Context, r analytics.DayRange, txType analytics.TransactionType) ([]analytics.SeriesPoint, error)
	Summary(ctx context.Context, period string, now time.Time) (analytics.Summary, error)
}

// Handler coordinates HTTP requests for the analytics dashboard.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	now     func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleCategory(w http.ResponseWriter, r *http.Request) {
	dayRange, txType, fields := parseWindow(r)
	if len(fields) > 0 {
		httpx.FieldProblem(w, "Invalid analytics filters", fields)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.CategoryAnalysis(ctx, dayRange, txType)
	if err != nil {
		h.logger.Error("analytics category", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	dayRange, _, fields := parseWindow(r)
	by := strings.TrimSpace(r.URL.Query().Get("by"))
	if by == "" {
		by = "quantity"
	}
	if by != "quantity" && by != "amount" {
		fields["by"] = "must be quantity or amount"
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxTopProducts {
			fields["limit"] = fmt.Sprintf("must be an integer between 1 and %d", maxTopProducts)
		} else {
			limit = n
		}
	}
	if len(fields) > 0 {
		httpx.FieldProblem(w, "Invalid analytics filters", fields)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	products, err := h.service.TopProducts(ctx, dayRange, by, limit)
	if err != nil {
		h.logger.Error("analytics top products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	dayRange, txType, fields := parseWindow(r)
	if len(fields) > 0 {
		httpx.FieldProblem(w, "Invalid analytics filters", fields)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	series, err := h.service.Series(ctx, dayRange, txType)
	if err != nil {
		h.logger.Error("analytics series", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"series": series})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = "month"
	}
	switch period {
	case "day", "week", "month", "year":
	default:
		httpx.FieldProblem(w, "Invalid analytics filters", map[string]string{
			"period": "must be one of day, week, month, year",
		})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.service.Summary(ctx, period, h.now())
	if err != nil {
		h.logger.Error("analytics summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// parseWindow extracts the from/to day window and optional type selector.
// Malformed values are reported per field; a start after the end is not an
// error here, the pipeline answers it with an empty result.
func parseWindow(r *http.Request) (analytics.DayRange, analytics.TransactionType, map[string]string) {
	fields := map[string]string{}
	var window analytics.DayRange
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			fields["from"] = "must be a YYYY-MM-DD date"
		} else {
			window.Start = t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			fields["to"] = "must be a YYYY-MM-DD date"
		} else {
			window.End = t
		}
	}
	var txType analytics.TransactionType
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		switch analytics.TransactionType(raw) {
		case analytics.TypeSale, analytics.TypeExpense:
			txType = analytics.TransactionType(raw)
		default:
			fields["type"] = "must be sale or expense"
		}
	}
	return window, txType, fields
}
