package sqlite

import (
	"context"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/store/drivers/sqlite/gen"
)

// Row locking comes from the DSN: every transaction is BEGIN IMMEDIATE, so a
// second rotation blocks on the write lock until the first commits.
type refreshCredentialsRepo struct {
	q *gen.Queries
}

func (r *refreshCredentialsRepo) CreateRefreshCredential(ctx context.Context, c domain.RefreshCredential) error {
	err := r.q.CreateRefreshCredential(ctx, gen.CreateRefreshCredentialParams{
		ID:          c.ID,
		SessionID:   c.SessionID,
		Fingerprint: c.Fingerprint,
		TokenHash:   c.TokenHash,
		ExpiresAt:   utc(c.ExpiresAt),
		Revoked:     c.Revoked,
		CreatedAt:   utc(c.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *refreshCredentialsRepo) GetRefreshCredentialByHash(ctx context.Context, hash string) (domain.RefreshCredential, error) {
	row, err := r.q.GetRefreshCredentialByHash(ctx, hash)
	if err != nil {
		return domain.RefreshCredential{}, mapNotFound(err)
	}
	return mapRefreshCredential(row), nil
}

func (r *refreshCredentialsRepo) DeleteRefreshCredential(ctx context.Context, id, hash string) error {
	return expectOne(r.q.DeleteRefreshCredential(ctx, gen.DeleteRefreshCredentialParams{
		ID:        id,
		TokenHash: hash,
	}))
}

func (r *refreshCredentialsRepo) DeleteRefreshCredentialBySession(ctx context.Context, sessionID string) error {
	return expectOne(r.q.DeleteRefreshCredentialBySession(ctx, sessionID))
}
