package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/service"
)

type contextKeyAuth string

// AuthPrincipalKey is the context key for the authenticated principal.
const AuthPrincipalKey contextKeyAuth = "auth_principal"

// Authenticate returns an HTTP middleware that validates the Bearer project
// token on the Authorization header. On success the token's Principal is
// attached to the request context; on failure a 401 envelope is written with
// NO_TOKEN or INVALID_TOKEN.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, model.CodeNoToken,
					"Authentication required. Provide a Bearer project token.")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			principal, err := authSvc.ValidateToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, model.CodeInvalidToken, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AuthPrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Response{ //nolint:errcheck
		Success:   false,
		Error:     &model.ErrorDetail{Code: code, Message: message},
		Timestamp: time.Now().UTC(),
	})
}
