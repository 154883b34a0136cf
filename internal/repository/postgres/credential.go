package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/identity"
)

// CredentialRepository implements identity.CredentialRepository
type CredentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) Create(ctx context.Context, cred *identity.Credential) error {
	query := `
		INSERT INTO credentials (user_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, cred.UserID, cred.Email, cred.PasswordHash, cred.CreatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrDuplicateUser
		}
		return storeErr("create credential", err)
	}
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*identity.Credential, error) {
	query := `
		SELECT user_id, email, password_hash, created_at
		FROM credentials
		WHERE email = $1
	`
	var c identity.Credential
	err := r.pool.QueryRow(ctx, query, email).Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("get credential", err)
	}
	return &c, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID); err != nil {
		return storeErr("delete credential", err)
	}
	return nil
}
