package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/entities"
	"github.com/varangian-core/magical-board/domain/core/valueobjects"
	"github.com/varangian-core/magical-board/infrastructure/persistence/memory"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Handler(http.HandlerFunc(ok))

	serve := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, serve("10.0.0.1:1001").Code)
	rec := serve("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// buckets are per client
	assert.Equal(t, http.StatusOK, serve("10.0.0.2:1000").Code)
	assert.Equal(t, 2, rl.Visitors())
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.limiter("a")
	rl.limiter("b")
	require.Equal(t, 2, rl.Visitors())

	now = now.Add(2 * time.Minute)
	rl.limiter("b")
	assert.Equal(t, 2, rl.Visitors())

	now = now.Add(2 * time.Minute)
	rl.limiter("b")
	assert.Equal(t, 1, rl.Visitors())
}

type routeRecorder struct {
	method, route string
	code          int
}

func (r *routeRecorder) RecordHTTP(method, route string, code int, _ time.Duration) {
	r.method, r.route, r.code = method, route, code
}

func TestMetrics_RoutePattern(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		route string
		code  int
	}{
		{"matched", "/boards/b-123", "/boards/{boardID}", http.StatusOK},
		{"unmatched", "/nowhere", "unmatched", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &routeRecorder{}
			r := chi.NewRouter()
			r.Use(Metrics(rec))
			r.Get("/boards/{boardID}", ok)

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.MethodGet, rec.method)
			assert.Equal(t, tt.route, rec.route)
			assert.Equal(t, tt.code, rec.code)
		})
	}
}

func TestLogger_BoardFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(Logger(zap.New(core)))
	r.Route("/boards/{boardID}/session", func(r chi.Router) {
		r.Post("/elements/{elementID}/drag", ok)
		r.Post("/elements/{elementID}/transform", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/boards/b-1/session/elements/e-7/drag", nil)
	req.Header.Set(UserIDHeader, "u-3")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "b-1", fields["board_id"])
	assert.Equal(t, "e-7", fields["element_id"])
	assert.Equal(t, "u-3", fields["user_id"])
	assert.Equal(t, "/boards/{boardID}/session/elements/{elementID}/drag", fields["route"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
	assert.NotContains(t, fields, "node_id")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/boards/b-1/session/elements/e-7/transform", nil))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.NotContains(t, logs.All()[1].ContextMap(), "user_id")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, 3, logs.Len())
	unmatched := logs.All()[2].ContextMap()
	assert.NotContains(t, unmatched, "board_id")
	assert.Equal(t, int64(http.StatusNotFound), unmatched["status"])
}

type failingUsers struct {
	ports.UserRepository
}

func (failingUsers) GetUser(context.Context, string) (*entities.User, error) {
	return nil, errors.New("table unavailable")
}

func TestIdentify(t *testing.T) {
	users := memory.NewUserRepository()
	user, err := entities.NewUser("u1", "Minako", valueobjects.Avatar{ID: "heart", Emoji: "💖"})
	require.NoError(t, err)
	require.NoError(t, users.CreateUser(context.Background(), user))

	var seen *entities.User
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		users  ports.UserRepository
		header string
		status int
		want   string
	}{
		{"no header", users, "", http.StatusOK, ""},
		{"known user", users, "u1", http.StatusOK, "u1"},
		{"unknown user", users, "u2", http.StatusOK, ""},
		{"lookup failure", failingUsers{}, "u1", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			Identify(tt.users, zap.NewNop())(capture).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.want == "" {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tt.want, seen.ID())
		})
	}
}
