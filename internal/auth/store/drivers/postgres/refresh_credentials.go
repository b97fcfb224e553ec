package postgres

import (
	"context"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
)

type refreshCredentialsRepo struct {
	db dbtx

	// forUpdate adds FOR UPDATE to lookups so a concurrent rotation of the
	// same credential waits for this transaction to finish.
	forUpdate bool
}

func (r *refreshCredentialsRepo) CreateRefreshCredential(ctx context.Context, c domain.RefreshCredential) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_credentials (id, session_id, fingerprint, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.SessionID, c.Fingerprint, c.TokenHash, c.ExpiresAt.UTC(), c.Revoked, c.CreatedAt.UTC())
	return mapConstraint(err)
}

func (r *refreshCredentialsRepo) GetRefreshCredentialByHash(ctx context.Context, hash string) (domain.RefreshCredential, error) {
	q := `
		SELECT id, session_id, fingerprint, token_hash, expires_at, revoked, created_at
		FROM refresh_credentials
		WHERE token_hash = $1`
	if r.forUpdate {
		q += ` FOR UPDATE`
	}

	var c domain.RefreshCredential
	err := r.db.QueryRow(ctx, q, hash).Scan(
		&c.ID,
		&c.SessionID,
		&c.Fingerprint,
		&c.TokenHash,
		&c.ExpiresAt,
		&c.Revoked,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.RefreshCredential{}, mapNotFound(err)
	}
	c.ExpiresAt = c.ExpiresAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *refreshCredentialsRepo) DeleteRefreshCredential(ctx context.Context, id, hash string) error {
	return expectOne(r.db.Exec(ctx,
		`DELETE FROM refresh_credentials WHERE id = $1 AND token_hash = $2`, id, hash))
}

func (r *refreshCredentialsRepo) DeleteRefreshCredentialBySession(ctx context.Context, sessionID string) error {
	return expectOne(r.db.Exec(ctx,
		`DELETE FROM refresh_credentials WHERE session_id = $1`, sessionID))
}
