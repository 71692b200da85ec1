package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/domain/core/entities"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// UserIDHeader names the caller's user. It identifies, it does not
// authenticate.
const UserIDHeader = "X-User-ID"

type contextKey string

const userKey contextKey = "user"

// Identify resolves the X-User-ID header to a user and stores it in the
// request context. Unknown ids leave the request anonymous.
func Identify(users ports.UserRepository, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case pkgerrors.IsNotFound(err):
				logger.Debug("Unknown user header", zap.String("user_id", userID))
			default:
				respondWithError(w, pkgerrors.HTTPStatus(err), "Failed to resolve user")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a context carrying user
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the identified user, or nil
func UserFromContext(ctx context.Context) *entities.User {
	user, _ := ctx.Value(userKey).(*entities.User)
	return user
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    code,
	})
}
