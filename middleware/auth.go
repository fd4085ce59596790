package middleware

import (
	"context"
	"net/http"
	"strings"

	"chispa_server/models"
	"chispa_server/services"
)

type contextKey string

const profileKey contextKey = "profile"

// AuthMiddleware guards the REST API: every request must carry a valid
// bearer credential resolving to an existing profile.
type AuthMiddleware struct {
	Auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth}
}

// Handle validates the credential and injects the caller's profile into the
// request context.
func (am *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 {
				token = parts[1]
			}
		}

		// Fallback: query param, for clients that cannot set headers.
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token == "" {
			http.Error(w, `{"error": "Missing authentication token"}`, http.StatusUnauthorized)
			return
		}

		profile, err := am.Auth.ProfileForToken(r.Context(), token)
		if err != nil {
			http.Error(w, `{"error": "Invalid token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ProfileFrom returns the authenticated caller's profile, if any.
func ProfileFrom(ctx context.Context) (*models.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*models.Profile)
	return profile, ok
}
