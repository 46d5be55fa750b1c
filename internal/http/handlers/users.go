package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/tasks-be/internal/auth"
	"github.com/hongminglow/tasks-be/internal/http/respond"
	"github.com/hongminglow/tasks-be/internal/middleware"
	"github.com/hongminglow/tasks-be/internal/models"
	"github.com/hongminglow/tasks-be/internal/models/dto"
	"github.com/hongminglow/tasks-be/internal/storage"
)

// cascadeParallelism bounds concurrent task deletions during a user delete.
const cascadeParallelism = 8

// UserHandler serves CRUD over users. Registration is public; the rest
// requires authentication.
type UserHandler struct {
	users storage.UserStore
	tasks storage.TaskStore
	deps  Deps
}

// NewUserHandler constructs the handler.
func NewUserHandler(users storage.UserStore, tasks storage.TaskStore, deps Deps) *UserHandler {
	return &UserHandler{users: users, tasks: tasks, deps: deps.withDefaults()}
}

// Register attaches user routes to the mux.
func (h *UserHandler) Register(mux *http.ServeMux, protect middleware.Func) {
	mux.HandleFunc("POST /users", h.handleCreate)
	mux.Handle("GET /users", protect(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /users/{id}", protect(http.HandlerFunc(h.handleGet)))
	mux.Handle("PATCH /users/{id}", protect(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /users/{id}", protect(http.HandlerFunc(h.handleDelete)))
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to get users", err)
		return
	}
	if len(users) == 0 {
		respond.Message(w, http.StatusBadRequest, "No users found")
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user, err := h.users.GetUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusNotFound, fmt.Sprintf("User with id %s not found", id))
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to get user", err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeValid(r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	taken, err := h.usernameTaken(r.Context(), req.Username, "")
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to create user", err)
		return
	}
	if taken {
		respond.Message(w, http.StatusConflict, duplicateMessage(req.Username))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to create user", err)
		return
	}

	created, err := h.users.CreateUser(r.Context(), models.NewUser(req.Username, hash, req.Roles))
	if errors.Is(err, storage.ErrAlreadyExists) {
		respond.Message(w, http.StatusConflict, duplicateMessage(req.Username))
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to create user", err)
		return
	}
	if created.ID == "" {
		respond.Message(w, http.StatusBadRequest, "Invalid user data received")
		return
	}
	respond.Message(w, http.StatusCreated, fmt.Sprintf("New user %s created!", created.Username))
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var req dto.UpdateUserRequest
	if err := decodeValid(r, &req); err != nil || id == "" {
		respond.Message(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusBadRequest, "User not found.")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to update user", err)
		return
	}

	taken, err := h.usernameTaken(r.Context(), req.Username, id)
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to update user", err)
		return
	}
	if taken {
		respond.Message(w, http.StatusConflict, duplicateMessage(req.Username))
		return
	}

	user.Username = req.Username
	user.Roles = req.Roles
	user.Active = *req.Active
	if req.Password != "" {
		if user.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			h.deps.serverError(w, r, "Error while trying to update user", err)
			return
		}
	}

	updated, err := h.users.UpdateUser(r.Context(), user)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Message(w, http.StatusConflict, duplicateMessage(req.Username))
		return
	case errors.Is(err, storage.ErrNotFound):
		respond.Message(w, http.StatusBadRequest, "User not found.")
		return
	case err != nil:
		h.deps.serverError(w, r, "Error while trying to update user", err)
		return
	}
	respond.Message(w, http.StatusOK, fmt.Sprintf("%s updated.", updated.Username))
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respond.Message(w, http.StatusBadRequest, "User ID Required")
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusBadRequest, "User not found")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to delete user", err)
		return
	}

	if err := h.deleteOwnedTasks(r.Context(), id); err != nil {
		h.deps.serverError(w, r, "Error while trying to delete user tasks", err)
		return
	}

	err = h.users.DeleteUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusBadRequest, "User not found")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to delete user", err)
		return
	}
	respond.JSON(w, http.StatusOK, fmt.Sprintf("User %s with ID %s deleted", user.Username, user.ID))
}

// deleteOwnedTasks removes every task owned by owner concurrently. It is not
// atomic: all deletions are attempted and the first failure is returned, in
// which case the owner must be kept so a retry can finish the cascade.
func (h *UserHandler) deleteOwnedTasks(ctx context.Context, owner string) error {
	tasks, err := h.tasks.ListTasksByOwner(ctx, owner)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(cascadeParallelism)
	for _, task := range tasks {
		g.Go(func() error {
			err := h.tasks.DeleteTask(ctx, task.ID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("delete task %s: %w", task.ID, err)
			}
			if h.deps.Cascaded != nil {
				h.deps.Cascaded.Inc()
			}
			return nil
		})
	}
	return g.Wait()
}

// usernameTaken reports whether a user other than exceptID holds username.
func (h *UserHandler) usernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	existing, err := h.users.FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != exceptID, nil
}

func duplicateMessage(username string) string {
	return fmt.Sprintf("User with name %s already exists.", username)
}
