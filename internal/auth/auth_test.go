package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/tasks-be/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "tasks-test", time.Hour)
	user := models.User{ID: "U1", Username: "alice", Roles: []string{"User", "Admin"}}

	token, err := tm.Generate(user)
	require.NoError(t, err)

	id, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "U1", Username: "alice", Roles: []string{"User", "Admin"}}, id)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	user := models.User{ID: "U1", Username: "alice"}
	tm := NewTokenManager("secret", "tasks-test", time.Hour)

	otherSecret, err := NewTokenManager("other", "tasks-test", time.Hour).Generate(user)
	require.NoError(t, err)
	_, err = tm.Parse(otherSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer, err := NewTokenManager("secret", "someone-else", time.Hour).Generate(user)
	require.NoError(t, err)
	_, err = tm.Parse(otherIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "tasks-test", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }
	token, err := tm.Generate(models.User{ID: "U1"})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("p@ss")
	require.NoError(t, err)
	assert.NotEqual(t, "p@ss", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	assert.True(t, CheckPassword(hash, "p@ss"))
	assert.False(t, CheckPassword(hash, "wrong"))

	again, err := HashPassword("p@ss")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestHashPasswordBeyondBcryptLimit(t *testing.T) {
	long := strings.Repeat("a", 72) + "tail"
	hash, err := HashPassword(long)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, long))
	assert.True(t, CheckPassword(hash, strings.Repeat("a", 72)+"other"), "only the first 72 bytes count")
	assert.False(t, CheckPassword(hash, strings.Repeat("a", 71)))
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{ID: "U1"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "U1", id.ID)
}
