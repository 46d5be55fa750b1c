package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/tasks-be/internal/auth"
)

type memRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (m *memRecorder) Record(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, message)
}

type stubParser struct {
	id  auth.Identity
	err error
}

func (s stubParser) Parse(string) (auth.Identity, error) {
	return s.id, s.err
}

func teapot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Func {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(teapot), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoggingRecordsEveryRequest(t *testing.T) {
	log, hook := test.NewNullLogger()
	events := &memRecorder{}
	h := Logging(log, events)(http.HandlerFunc(teapot))

	req := httptest.NewRequest(http.MethodGet, "/tasks?owner=U1", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/users/7", nil))

	require.Len(t, events.lines, 2)
	assert.Equal(t, "GET\t/tasks?owner=U1\thttps://app.example", events.lines[0])
	assert.Equal(t, "DELETE\t/users/7\t-", events.lines[1])

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, http.StatusTeapot, hook.Entries[0].Data["status"])
	assert.Equal(t, "/tasks", hook.Entries[0].Data["path"])
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://App.example"})(http.HandlerFunc(teapot))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/tasks", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSAllowAll(t *testing.T) {
	h := CORS([]string{"*"})(http.HandlerFunc(teapot))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireAuth(t *testing.T) {
	log, _ := test.NewNullLogger()
	var seen auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		parser stubParser
		status int
		body   string
	}{
		{"missing header", "", stubParser{}, http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"wrong scheme", "Basic abc", stubParser{}, http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"empty token", "Bearer ", stubParser{}, http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"invalid token", "Bearer bad", stubParser{err: errors.New("nope")}, http.StatusForbidden, `{"message":"Forbidden"}`},
		{"valid token", "bearer good", stubParser{id: auth.Identity{ID: "U1", Username: "alice"}}, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = auth.Identity{}
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(tc.parser, log)(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rec.Body.String())
				assert.Empty(t, seen.ID)
			} else {
				assert.Equal(t, "U1", seen.ID)
			}
		})
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	m := NewMetrics("test")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/{id}", teapot)
	h := m.Middleware()(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "GET /tasks/{id}", "418")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "test_http_requests_total"))
}
