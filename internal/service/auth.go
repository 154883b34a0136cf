package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/identity"
	"github.com/Rrens/health-insights/internal/usersession"
)

// ProfileCache caches user profiles. Get returns nil on a miss.
type ProfileCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// AuthService handles sign-up, sign-in and per-request token revalidation
type AuthService struct {
	provider identity.Provider
	users    domain.UserRepository
	sessions usersession.Store
	cache    ProfileCache
	now      func() time.Time
}

// NewAuthService creates a new auth service. cache may be nil.
func NewAuthService(
	provider identity.Provider,
	users domain.UserRepository,
	sessions usersession.Store,
	cache ProfileCache,
) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		sessions: sessions,
		cache:    cache,
		now:      time.Now,
	}
}

// SignUp registers the credential with the identity provider and then writes
// the profile. A failed profile write removes the credential again.
func (s *AuthService) SignUp(ctx context.Context, input domain.SignUpInput) (*domain.User, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	userID := uuid.New()
	if err := s.provider.SignUp(ctx, userID, input.Email, input.Password); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:        userID,
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if derr := s.provider.DeleteUser(ctx, userID); derr != nil {
			log.Error().Err(derr).Str("user_id", userID.String()).Msg("Failed to remove credential after profile write failed")
		}
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to create profile: %w", domain.ErrAuthProvider, err)
	}

	log.Info().Str("user_id", userID.String()).Msg("User signed up")
	return user, nil
}

// SignIn discards any previous session of the user and starts a new one
func (s *AuthService) SignIn(ctx context.Context, input domain.SignInInput) (*domain.AuthSession, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	session, err := s.provider.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.profile(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	state := &usersession.State{
		TokenID:   session.TokenID,
		UserID:    session.UserID,
		Email:     session.Email,
		StartedAt: s.now().UTC(),
	}
	if err := s.sessions.Start(ctx, state); err != nil {
		return nil, fmt.Errorf("%w: failed to start session: %w", domain.ErrStore, err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("User signed in")
	return &domain.AuthSession{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		User:        user,
	}, nil
}

// ValidateSessionToken confirms the token is the provider's current token for
// its user and that it opened the user's session state. State that disagrees
// with a valid token is torn down.
func (s *AuthService) ValidateSessionToken(ctx context.Context, token string) (*usersession.State, error) {
	id, err := s.provider.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	state, err := s.sessions.Get(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			// The provider still honours a token whose session state is gone
			s.teardown(ctx, id.UserID)
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: failed to load session: %w", domain.ErrStore, err)
	}

	if state.TokenID != id.TokenID {
		return nil, fmt.Errorf("%w: token does not match the active session", domain.ErrUnauthorized)
	}
	return state, nil
}

// SignOut revokes the user's token and clears the session state.
// Signing out without a session is not an error.
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	var errs []error
	if err := s.provider.SignOut(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	if err := s.sessions.End(ctx, userID); err != nil {
		errs = append(errs, fmt.Errorf("%w: failed to end session: %w", domain.ErrStore, err))
	}
	if err := errors.Join(errs...); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Sign out incomplete")
		return err
	}

	log.Info().Str("user_id", userID.String()).Msg("User signed out")
	return nil
}

func (s *AuthService) teardown(ctx context.Context, userID uuid.UUID) {
	if err := s.provider.SignOut(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to revoke token during teardown")
	}
	if err := s.sessions.End(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to clear session during teardown")
	}
}

// Me returns the user's profile
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.profile(ctx, userID)
}

// UpdateProfile changes the user's display name
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	if err := Validate(update); err != nil {
		return nil, err
	}

	if err := s.users.UpdateName(ctx, userID, strings.TrimSpace(update.Name)); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate profile cache")
		}
	}
	return s.profile(ctx, userID)
}

func (s *AuthService) profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if s.cache != nil {
		user, err := s.cache.Get(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Msg("Profile cache read failed")
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			log.Warn().Err(err).Msg("Profile cache write failed")
		}
	}
	return user, nil
}
