package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/tasks-be/internal/auth"
	"github.com/hongminglow/tasks-be/internal/logging"
	"github.com/hongminglow/tasks-be/internal/storage"
	"github.com/hongminglow/tasks-be/internal/storage/sqlite"
)

var dbSeq atomic.Int64

type testEnv struct {
	store  storage.Store
	tokens *auth.TokenManager
	errs   *memRecorder
	mux    *http.ServeMux
}

type memRecorder struct {
	lines []string
}

func (m *memRecorder) Record(message string) { m.lines = append(m.lines, message) }

func passthrough(next http.Handler) http.Handler { return next }

// newTestEnv mounts every handler on a fresh in-memory SQLite store with the
// auth gate disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers-%d?mode=memory&cache=shared", dbSeq.Add(1))
	store, err := sqlite.NewStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:  store,
		tokens: auth.NewTokenManager("test-secret", "tasks-test", time.Hour),
		errs:   &memRecorder{},
		mux:    http.NewServeMux(),
	}
	deps := Deps{Log: logging.Discard(), Errors: env.errs}
	NewAuthHandler(store, env.tokens, deps).Register(env.mux)
	NewTaskHandler(store, deps).Register(env.mux, passthrough)
	NewUserHandler(store, store, deps).Register(env.mux, passthrough)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// createUser registers a user through the API and returns its stored id.
func (e *testEnv) createUser(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/users", map[string]any{
		"username": username,
		"password": password,
		"roles":    []string{"User"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user, err := e.store.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return user.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
