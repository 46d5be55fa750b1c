// Package storagetest holds a behavioural suite every storage.Store backend must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/tasks-be/internal/models"
	"github.com/hongminglow/tasks-be/internal/storage"
)

// Factory returns an empty store. Cleanup is the factory's responsibility.
type Factory func(t *testing.T) storage.Store

// Run exercises the full storage.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("UserLifecycle", func(t *testing.T) { testUserLifecycle(t, newStore(t)) })
	t.Run("UniqueUsername", func(t *testing.T) { testUniqueUsername(t, newStore(t)) })
	t.Run("ListUsersOmitsPassword", func(t *testing.T) { testListUsersOmitsPassword(t, newStore(t)) })
	t.Run("TaskLifecycle", func(t *testing.T) { testTaskLifecycle(t, newStore(t)) })
	t.Run("TasksByOwner", func(t *testing.T) { testTasksByOwner(t, newStore(t)) })
	t.Run("MissingRecords", func(t *testing.T) { testMissingRecords(t, newStore(t)) })
}

func testUserLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.NewUser("alice", "hash-1", []string{"User", "Admin"}))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash-1", got.PasswordHash)
	assert.Equal(t, []string{"User", "Admin"}, got.Roles)
	assert.True(t, got.Active)

	byName, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = s.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, storage.ErrNotFound, "username lookup is case-sensitive")

	got.Username = "alice2"
	got.Active = false
	got.Roles = []string{"Manager"}
	_, err = s.UpdateUser(ctx, got)
	require.NoError(t, err)

	got, err = s.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.False(t, got.Active)
	assert.Equal(t, []string{"Manager"}, got.Roles)
	assert.Equal(t, "hash-1", got.PasswordHash)

	require.NoError(t, s.DeleteUser(ctx, created.ID))
	_, err = s.GetUser(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUniqueUsername(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.CreateUser(ctx, models.NewUser("alice", "h", nil))
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.NewUser("alice", "h", nil))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	bob, err := s.CreateUser(ctx, models.NewUser("bob", "h", nil))
	require.NoError(t, err)
	bob.Username = "alice"
	_, err = s.UpdateUser(ctx, bob)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func testListUsersOmitsPassword(t *testing.T, s storage.Store) {
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, name := range []string{"alice", "bob"} {
		_, err := s.CreateUser(ctx, models.NewUser(name, "secret-"+name, nil))
		require.NoError(t, err)
	}

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
		assert.Equal(t, []string{models.DefaultRole}, u.Roles)
	}
}

func testTaskLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	created, err := s.CreateTask(ctx, models.NewTask("U1", "title", "desc"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Completed)

	got, err := s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Owner = "U2"
	got.Title = "new title"
	got.Description = "new desc"
	got.Completed = true
	_, err = s.UpdateTask(ctx, got)
	require.NoError(t, err)

	reloaded, err := s.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)

	require.NoError(t, s.DeleteTask(ctx, created.ID))
	_, err = s.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testTasksByOwner(t *testing.T, s storage.Store) {
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.CreateTask(ctx, models.NewTask("U1", title, "d"))
		require.NoError(t, err)
	}
	_, err := s.CreateTask(ctx, models.NewTask("U2", "other", "d"))
	require.NoError(t, err)

	tasks, err := s.ListTasksByOwner(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, title := range []string{"a", "b", "c"} {
		assert.Equal(t, title, tasks[i].Title)
		assert.Equal(t, "U1", tasks[i].Owner)
	}

	none, err := s.ListTasksByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testMissingRecords(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdateTask(ctx, models.Task{ID: "missing", Owner: "o", Title: "t", Description: "d"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, "missing"), storage.ErrNotFound)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdateUser(ctx, models.User{ID: "missing", Username: "ghost", Roles: []string{"User"}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, "missing"), storage.ErrNotFound)
}
