package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trade-manager/trade-manager/internal/shared"
)

// commitWriter mirrors the production session middleware: Commit must run
// before the first byte of the response is written, otherwise the recorder's
// header snapshot misses the Set-Cookie header.
type commitWriter struct {
	http.ResponseWriter
	sess          *shared.Session
	sessions      *shared.SessionManager
	req           *http.Request
	headerWritten bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		_ = w.sessions.Commit(w.req.Context(), w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

type fakeRepo struct {
	user     *User
	sessions map[string]int64
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if f.user == nil || !strings.EqualFold(f.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if f.sessions == nil {
		f.sessions = map[string]int64{}
	}
	f.sessions[id] = userID
	return nil
}

func (f *fakeRepo) DeleteSession(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func newTestHandler(t *testing.T, repo Repository) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "tm_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	h := NewHandler(slog.New(slog.DiscardHandler), NewService(repo), sessions, csrf)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			wrapped := &commitWriter{ResponseWriter: w, sess: sess, sessions: sessions, req: req.WithContext(ctx)}
			next.ServeHTTP(wrapped, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)
	return r, sessions
}

func activeUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{ID: 7, Email: "owner@example.com", Name: "Owner", PasswordHash: string(hash), IsActive: true}
}

func TestLoginSuccessSetsSession(t *testing.T) {
	repo := &fakeRepo{user: activeUser(t, "correct-horse")}
	router, _ := newTestHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"owner@example.com","password":"correct-horse"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "csrf_token")
	require.Len(t, repo.sessions, 1)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "tm_session", cookies[0].Name)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &fakeRepo{user: activeUser(t, "correct-horse")}
	router, _ := newTestHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"owner@example.com","password":"wrong-password"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, repo.sessions)
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "correct-horse")
	user.IsActive = false
	router, _ := newTestHandler(t, &fakeRepo{user: user})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"owner@example.com","password":"correct-horse"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	router, _ := newTestHandler(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email","password":"short"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMeUnauthenticated(t *testing.T) {
	router, _ := newTestHandler(t, &fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
