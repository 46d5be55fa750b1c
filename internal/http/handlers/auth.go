package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/tasks-be/internal/auth"
	"github.com/hongminglow/tasks-be/internal/http/respond"
	"github.com/hongminglow/tasks-be/internal/models/dto"
	"github.com/hongminglow/tasks-be/internal/storage"
)

// AuthHandler exchanges credentials for an access token.
type AuthHandler struct {
	users  storage.UserStore
	tokens *auth.TokenManager
	deps   Deps
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, tokens *auth.TokenManager, deps Deps) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, deps: deps.withDefaults()}
}

// Register attaches the login route to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth", h.handleLogin)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeValid(r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to log in", err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.Message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !user.Active {
		respond.Message(w, http.StatusForbidden, "Account is inactive")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to log in", err)
		return
	}
	h.deps.Log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user logged in")
	respond.JSON(w, http.StatusOK, dto.LoginResponse{AccessToken: token})
}
