package transactions

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
	"github.com/trade-manager/trade-manager/internal/shared"
)

// Handler manages transaction endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.list)
	r.Post("/transactions", h.record)
	r.Get("/transactions/{id}", h.get)
	r.Delete("/transactions/{id}", h.delete)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return
	}
	userID := shared.UserIDInt64FromContext(r.Context())

	tx, err := h.service.Record(r.Context(), req, userID)
	if err != nil {
		h.logger.Error("record transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, fields := parseListFilter(r)
	if len(fields) > 0 {
		httpx.FieldProblem(w, "Invalid transaction filters", fields)
		return
	}
	txs, page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"pagination":   page,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.FieldProblem(w, "Invalid transaction ID", map[string]string{"id": "must be a positive integer"})
		return
	}
	tx, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.FieldProblem(w, "Invalid transaction ID", map[string]string{"id": "must be a positive integer"})
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseListFilter(r *http.Request) (ListFilter, map[string]string) {
	fields := map[string]string{}
	var filter ListFilter
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			fields["from"] = "must be a YYYY-MM-DD date"
		} else {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			fields["to"] = "must be a YYYY-MM-DD date"
		} else {
			filter.To = t
		}
	}
	if raw := q.Get("type"); raw != "" {
		switch Type(raw) {
		case TypeSale, TypeExpense:
			filter.Type = Type(raw)
		default:
			fields["type"] = "must be sale or expense"
		}
	}
	if raw := q.Get("collaborator_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fields["collaborator_id"] = "must be a positive integer"
		} else {
			filter.CollaboratorID = &id
		}
	}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fields["page"] = "must be a positive integer"
		} else {
			filter.Page = n
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			fields["per_page"] = "must be an integer between 1 and 100"
		} else {
			filter.PerPage = n
		}
	}
	return filter, fields
}
