// Package identity verifies credentials and issues, validates and revokes
// access tokens. Only one token per user is active at a time.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is the secret half of an account
type Credential struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an issued access token
type Session struct {
	AccessToken string
	TokenID     string
	UserID      uuid.UUID
	Email       string
	ExpiresAt   time.Time
}

// Identity is what a valid token proves
type Identity struct {
	UserID  uuid.UUID
	Email   string
	TokenID string
}

// CredentialRepository stores credentials.
// Create fails with domain.ErrDuplicateUser for a taken email and GetByEmail
// with domain.ErrUserNotFound for an unknown one.
type CredentialRepository interface {
	Create(ctx context.Context, cred *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// TokenRegistry remembers the single active token id of each user.
// Active returns an empty string when the user has none.
type TokenRegistry interface {
	Activate(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Active(ctx context.Context, userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, userID uuid.UUID) error
}

// Provider is the identity boundary used by the auth service
type Provider interface {
	// SignUp registers a credential under userID. Repeating a sign-up that
	// already committed with the same userID succeeds.
	SignUp(ctx context.Context, userID uuid.UUID, email, password string) error
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Validate(ctx context.Context, token string) (*Identity, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
	// DeleteUser removes the credential; used to undo a partial sign-up.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}
