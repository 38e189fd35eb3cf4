package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dkovalev/lotkeeper/internal/common"
	"github.com/dkovalev/lotkeeper/internal/server/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// UserID returns the authenticated user id stored by the auth middleware,
// or "" when the request was not authenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// withAuth verifies the bearer device token and stores its user id in the
// request context. Everything behind it can trust UserID(ctx).
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			jsonError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, []byte(s.config.SecretKey))
		if err != nil || userID == "" {
			jsonError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}
