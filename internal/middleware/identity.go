package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/hestia/internal/auth"
	"github.com/dukerupert/hestia/internal/model"
)

// UserIDHeader carries the caller's user ID, set by the gateway in front of
// the API after it has authenticated the request.
const UserIDHeader = "X-User-ID"

// UserLookup resolves a user by ID. It returns (nil, nil) for unknown users.
type UserLookup interface {
	GetByID(id int64) (*model.User, error)
}

// RequireUser rejects requests without a valid X-User-ID naming an active
// user, and puts the identity in the request context.
func RequireUser(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			u, err := users.GetByID(id)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if u == nil || !u.IsActive {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := auth.WithUser(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
