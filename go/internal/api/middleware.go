package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/crownjudge/pageant/go/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// withAuth wraps a handler so only authenticated users reach it
func (s *Server) withAuth(next http.HandlerFunc, roles ...models.UserRole) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if len(roles) > 0 && !hasRole(user, roles) {
			log.Warn().
				Str("user_id", user.ID.String()).
				Str("role", string(user.Role)).
				Str("path", r.URL.Path).
				Msg("insufficient role for request")
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}

func (s *Server) authenticate(r *http.Request) (*models.User, error) {
	token := bearerToken(r)
	return s.users.Authenticate(r.Context(), token)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// WebSocket clients in browsers cannot set headers
	return r.URL.Query().Get("token")
}

func hasRole(user *models.User, roles []models.UserRole) bool {
	for _, role := range roles {
		if user.Role == role {
			return true
		}
		// Superadmins can do everything an admin can
		if role == models.UserRoleAdmin && user.Role == models.UserRoleSuperAdmin {
			return true
		}
	}
	return false
}

func userFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
