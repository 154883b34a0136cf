package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/api/response"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/usersession"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	StateKey  contextKey = "userState"
)

// SessionValidator revalidates a bearer token against the identity provider
// and the user's session state
type SessionValidator interface {
	ValidateSessionToken(ctx context.Context, token string) (*usersession.State, error)
}

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	validator SessionValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(validator SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate revalidates the token on every request and loads the
// session state into the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		state, err := m.validator.ValidateSessionToken(r.Context(), parts[1])
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				response.Unauthorized(w, "invalid or expired session")
				return
			}
			log.Error().Err(err).Msg("Session validation failed")
			response.Error(w, http.StatusServiceUnavailable, "identity provider unavailable")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, state.UserID)
		ctx = context.WithValue(ctx, StateKey, state)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetState gets the session state loaded for the request
func GetState(ctx context.Context) (*usersession.State, bool) {
	state, ok := ctx.Value(StateKey).(*usersession.State)
	return state, ok
}
