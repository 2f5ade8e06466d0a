package collaborators

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
	"github.com/trade-manager/trade-manager/internal/shared"
)

// FormatterSource yields the money formatter configured for a user.
type FormatterSource interface {
	Formatter(ctx context.Context, userID int64) (*shared.MoneyFormatter, error)
}

// Handler manages collaborator endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	money   FormatterSource
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, money FormatterSource) *Handler {
	return &Handler{logger: logger, service: service, money: money}
}

// MountRoutes registers collaborator routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/collaborators", h.list)
	r.Post("/collaborators", h.create)
	r.Get("/collaborators/earnings", h.earnings)
	r.Get("/collaborators/{id}", h.get)
	r.Patch("/collaborators/{id}", h.update)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create collaborator", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("is_active") == "true"
	collaborators, err := h.service.List(r.Context(), onlyActive)
	if err != nil {
		h.logger.Error("list collaborators", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"collaborators": collaborators})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.FieldProblem(w, "Invalid collaborator ID", map[string]string{"id": "must be a positive integer"})
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.FieldProblem(w, "Invalid collaborator ID", map[string]string{"id": "must be a positive integer"})
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Error("update collaborator", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) earnings(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			fields["from"] = "must be a YYYY-MM-DD date"
		} else {
			from = t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			fields["to"] = "must be a YYYY-MM-DD date"
		} else {
			// Inclusive day bound.
			to = t.AddDate(0, 0, 1)
		}
	}
	if len(fields) > 0 {
		httpx.FieldProblem(w, "Invalid earnings filters", fields)
		return
	}
	earnings, err := h.service.Earnings(r.Context(), from, to)
	if err != nil {
		h.logger.Error("collaborator earnings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"earnings": h.renderEarnings(r.Context(), earnings)})
}

type earningView struct {
	Earning
	RevenueFormatted string `json:"revenue_formatted,omitempty"`
	PayoutFormatted  string `json:"payout_formatted,omitempty"`
}

// renderEarnings attaches display amounts in the requesting user's currency
// and locale. Figures stay numeric regardless so clients never parse these.
func (h *Handler) renderEarnings(ctx context.Context, earnings []Earning) []earningView {
	var formatter *shared.MoneyFormatter
	if h.money != nil {
		if userID := shared.UserIDInt64FromContext(ctx); userID > 0 {
			f, err := h.money.Formatter(ctx, userID)
			if err != nil {
				h.logger.Warn("load money formatter", slog.Any("error", err))
			} else {
				formatter = f
			}
		}
	}
	views := make([]earningView, 0, len(earnings))
	for _, e := range earnings {
		v := earningView{Earning: e}
		if formatter != nil {
			v.RevenueFormatted = formatter.Format(e.Revenue)
			v.PayoutFormatted = formatter.Format(e.Payout)
		}
		views = append(views, v)
	}
	return views
}
