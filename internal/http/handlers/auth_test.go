package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/tasks-be/internal/models/dto"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	id := env.createUser(t, "alice", "correct-horse")

	t.Run("success", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth", map[string]string{"username": "alice", "password": "correct-horse"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[dto.LoginResponse](t, rec)
		identity, err := env.tokens.Parse(body.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, id, identity.ID)
		assert.Equal(t, "alice", identity.Username)
		assert.Equal(t, []string{"User"}, identity.Roles)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth", map[string]string{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth", map[string]string{"username": "alice", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth", map[string]string{"username": "mallory", "password": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		user, err := env.store.GetUser(context.Background(), id)
		require.NoError(t, err)
		user.Active = false
		_, err = env.store.UpdateUser(context.Background(), user)
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/auth", map[string]string{"username": "alice", "password": "correct-horse"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"message":"Account is inactive"}`, rec.Body.String())
	})
}
