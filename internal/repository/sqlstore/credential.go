package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/identity"
)

// CredentialRepository implements identity.CredentialRepository
type CredentialRepository struct {
	db *DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(ctx context.Context, cred *identity.Credential) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		cred.UserID.String(), cred.Email, cred.PasswordHash, toUnix(cred.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return storeErr("create credential", err)
	}
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	var c identity.Credential
	var createdAt int64
	err := r.db.db.QueryRowContext(ctx,
		`SELECT user_id, email, password_hash, created_at FROM credentials WHERE email = ?`, email).
		Scan(&c.UserID, &c.Email, &c.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("get credential", err)
	}
	c.CreatedAt = fromUnix(createdAt)
	return &c, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, userID.String()); err != nil {
		return storeErr("delete credential", err)
	}
	return nil
}
