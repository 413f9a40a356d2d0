package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey struct{}

var userKey contextKey

// requireAuth resolves the bearer token to an account and stores it in the
// request context. Every route except /challenge and /login sits behind
// it.
func (h *handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			h.writeError(w, errUnauthorized())
			return
		}
		token, err := uuid.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			h.writeError(w, errUnauthorized())
			return
		}
		pubkey, ok := h.state.PubKeyForToken(token)
		if !ok {
			h.writeError(w, errUnauthorized())
			return
		}
		ctx := context.WithValue(r.Context(), userKey, authedUser{pubkey: pubkey, token: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) authedUser {
	user, _ := r.Context().Value(userKey).(authedUser)
	return user
}
