package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/tasks-be/internal/auth"
	"github.com/hongminglow/tasks-be/internal/http/respond"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token: a missing or
// malformed Authorization header yields 401, a token that fails verification
// yields 403. Accepted requests carry the caller's auth.Identity.
func RequireAuth(tokens TokenParser, log logrus.FieldLogger) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				respond.Message(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			id, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("rejected bearer token")
				respond.Message(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
