package collaborators

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trade-manager/trade-manager/internal/shared"
)

type stubFormatterSource struct {
	calls int
}

func (s *stubFormatterSource) Formatter(ctx context.Context, userID int64) (*shared.MoneyFormatter, error) {
	s.calls++
	return shared.NewMoneyFormatter("fr", "GNF"), nil
}

func newEarningsRouter(t *testing.T, money FormatterSource) (chi.Router, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	handler := NewHandler(slog.New(slog.DiscardHandler), NewService(store), money)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, store
}

func TestEarningsFormattedInUserCurrency(t *testing.T) {
	money := &stubFormatterSource{}
	r, store := newEarningsRouter(t, money)

	svc := NewService(store)
	c, err := svc.Create(context.Background(), CreateRequest{Name: "Ana", SharePercent: 20})
	require.NoError(t, err)
	store.sales[c.ID] = 1234567

	req := httptest.NewRequest(http.MethodGet, "/collaborators/earnings", nil)
	sess := &shared.Session{}
	sess.SetUser("1")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, money.calls)

	var body struct {
		Earnings []struct {
			Revenue          float64 `json:"revenue"`
			RevenueFormatted string  `json:"revenue_formatted"`
			PayoutFormatted  string  `json:"payout_formatted"`
		} `json:"earnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Earnings, 1)
	require.Equal(t, 1234567.0, body.Earnings[0].Revenue)
	require.Contains(t, body.Earnings[0].RevenueFormatted, "GNF")
	require.Contains(t, body.Earnings[0].PayoutFormatted, "GNF")
}

func TestEarningsStayNumericWithoutSession(t *testing.T) {
	money := &stubFormatterSource{}
	r, store := newEarningsRouter(t, money)

	svc := NewService(store)
	c, err := svc.Create(context.Background(), CreateRequest{Name: "Ben", SharePercent: 10})
	require.NoError(t, err)
	store.sales[c.ID] = 500

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/collaborators/earnings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, money.calls)

	var body struct {
		Earnings []map[string]any `json:"earnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Earnings, 1)
	require.NotContains(t, body.Earnings[0], "revenue_formatted")
}
