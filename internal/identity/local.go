package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/security"
)

// Local is a Provider backed by a credential table, bcrypt and signed JWTs
type Local struct {
	creds  CredentialRepository
	tokens TokenRegistry
	jwt    *security.JWTManager
}

// NewLocal creates a local identity provider
func NewLocal(creds CredentialRepository, tokens TokenRegistry, jwtManager *security.JWTManager) *Local {
	return &Local{creds: creds, tokens: tokens, jwt: jwtManager}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Local) SignUp(ctx context.Context, userID uuid.UUID, email, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	cred := &Credential{
		UserID:       userID,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = p.creds.Create(ctx, cred)
	if errors.Is(err, domain.ErrDuplicateUser) {
		// An earlier attempt may have committed before its reply was lost
		existing, lookupErr := p.creds.GetByEmail(ctx, cred.Email)
		if lookupErr == nil && existing.UserID == userID {
			return nil
		}
	}
	return err
}

func (p *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	cred, err := p.creds.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := security.CheckPassword(password, cred.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := p.jwt.IssueAccessToken(cred.UserID, cred.Email)
	if err != nil {
		return nil, err
	}

	// Replaces whatever token the user had before
	if err := p.tokens.Activate(ctx, cred.UserID, claims.TokenID(), p.jwt.AccessTokenTTL()); err != nil {
		return nil, fmt.Errorf("failed to activate token: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenID:     claims.TokenID(),
		UserID:      cred.UserID,
		Email:       cred.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (p *Local) Validate(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	active, err := p.tokens.Active(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active token: %w", err)
	}
	if active == "" || active != claims.TokenID() {
		return nil, fmt.Errorf("%w: token is no longer active", domain.ErrUnauthorized)
	}

	return &Identity{UserID: claims.UserID, Email: claims.Email, TokenID: claims.TokenID()}, nil
}

func (p *Local) SignOut(ctx context.Context, userID uuid.UUID) error {
	return p.tokens.Revoke(ctx, userID)
}

func (p *Local) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := p.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	return p.creds.Delete(ctx, userID)
}
