package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/aussiebroadwan/sessiond/internal/auth/store"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/idx"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
	"github.com/google/uuid"
)

// NewLogin describes the session to open for an authenticated user.
type NewLogin struct {
	UserID      string
	Fingerprint string
	IP          string
	UserAgent   string
	Location    string
	Metadata    json.RawMessage
}

// Login is returned exactly once. RefreshSecret cannot be recovered later.
type Login struct {
	SessionID     string
	RefreshSecret string
	Fingerprint   string
	ExpiresAt     time.Time
}

// Rotation is the outcome of a successful refresh.
type Rotation struct {
	UserID        string
	SessionID     string
	Access        AccessGrant
	RefreshSecret string
	Fingerprint   string
	ExpiresAt     time.Time
}

// RefreshService owns refresh credentials: creating them at login, rotating
// them, and dropping them at logout.
type RefreshService struct {
	Store  store.Store
	Access *AccessService

	// DigestKey keys the HMAC used to store refresh secrets.
	DigestKey []byte
	TTL       time.Duration

	Now func() time.Time
}

// Digest is the stored form of a refresh secret.
func (s *RefreshService) Digest(secret string) string {
	return cryptox.KeyedDigest(s.DigestKey, secret)
}

// CreateLogin opens a session with its first refresh credential and bumps
// the user's login counter, all in one transaction.
func (s *RefreshService) CreateLogin(ctx context.Context, in NewLogin) (Login, error) {
	if in.UserID == "" || in.Fingerprint == "" {
		return Login{}, fmt.Errorf("%w: user and fingerprint are required", ErrInvalidRequest)
	}

	now := s.now()
	secret := uuid.NewString()
	sess := domain.Session{
		ID:        idx.NewAt(now).String(),
		UserID:    in.UserID,
		LoginAt:   now,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		Location:  in.Location,
		Metadata:  in.Metadata,
	}
	cred := domain.RefreshCredential{
		ID:          idx.NewAt(now).String(),
		SessionID:   sess.ID,
		Fingerprint: in.Fingerprint,
		TokenHash:   s.Digest(secret),
		ExpiresAt:   now.Add(s.ttl()),
		CreatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if err := tx.RefreshCredentials().CreateRefreshCredential(ctx, cred); err != nil {
			return fmt.Errorf("create refresh credential: %w", err)
		}
		if err := tx.Users().IncrementLoginCount(ctx, in.UserID); err != nil {
			return fmt.Errorf("increment login count: %w", err)
		}
		return nil
	})
	if err != nil {
		return Login{}, err
	}

	return Login{
		SessionID:     sess.ID,
		RefreshSecret: secret,
		Fingerprint:   in.Fingerprint,
		ExpiresAt:     cred.ExpiresAt,
	}, nil
}

// Rotate exchanges a refresh secret for a new access grant and a new refresh
// secret under the same session. The presented credential is deleted; a
// second use of the same secret fails with ErrNotFound. On
// ErrFingerprintMismatch nothing is changed.
//
// Callers must not retry on failure: ErrNotFound may mean a concurrent
// rotation won, and the client has to log in again.
func (s *RefreshService) Rotate(ctx context.Context, presented, presentedFingerprint, newFingerprint string) (Rotation, error) {
	log := slogx.FromContext(ctx)

	if presented == "" {
		metrics.Rotations.WithLabelValues(metrics.ResultNotFound).Inc()
		return Rotation{}, ErrNotFound
	}
	if newFingerprint == "" {
		return Rotation{}, fmt.Errorf("%w: new fingerprint is required", ErrInvalidRequest)
	}

	now := s.now()
	digest := s.Digest(presented)
	newSecret := uuid.NewString()

	var out Rotation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		cred, err := tx.RefreshCredentials().GetRefreshCredentialByHash(ctx, digest)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup refresh credential: %w", err)
		}

		if !cryptox.EqualHex(cred.Fingerprint, presentedFingerprint) {
			return ErrFingerprintMismatch
		}
		if !cred.Usable(now) {
			return ErrNotFound
		}

		sess, err := tx.Sessions().GetSessionByID(ctx, cred.SessionID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}

		user, err := tx.Users().GetUserByID(ctx, sess.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if !user.Active {
			return ErrNotFound
		}

		// Zero rows here means another rotation deleted it first.
		if err := tx.RefreshCredentials().DeleteRefreshCredential(ctx, cred.ID, cred.TokenHash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete refresh credential: %w", err)
		}

		next := domain.RefreshCredential{
			ID:          idx.NewAt(now).String(),
			SessionID:   sess.ID,
			Fingerprint: newFingerprint,
			TokenHash:   s.Digest(newSecret),
			ExpiresAt:   now.Add(s.ttl()),
			CreatedAt:   now,
		}
		if err := tx.RefreshCredentials().CreateRefreshCredential(ctx, next); err != nil {
			return fmt.Errorf("create refresh credential: %w", err)
		}

		grant, err := s.Access.IssueAccess(user.ID, user.Role)
		if err != nil {
			return fmt.Errorf("issue access: %w", err)
		}

		out = Rotation{
			UserID:        user.ID,
			SessionID:     sess.ID,
			Access:        grant,
			RefreshSecret: newSecret,
			Fingerprint:   newFingerprint,
			ExpiresAt:     next.ExpiresAt,
		}
		return nil
	})

	switch {
	case err == nil:
		metrics.Rotations.WithLabelValues(metrics.ResultSuccess).Inc()
		return out, nil
	case errors.Is(err, ErrNotFound):
		metrics.Rotations.WithLabelValues(metrics.ResultNotFound).Inc()
	case errors.Is(err, ErrFingerprintMismatch):
		metrics.Rotations.WithLabelValues(metrics.ResultFingerprintMismatch).Inc()
		log.Warn("refresh fingerprint mismatch")
	default:
		metrics.Rotations.WithLabelValues(metrics.ResultError).Inc()
		log.Error("refresh rotation failed", "err", err)
	}
	return Rotation{}, err
}

// Logout drops the refresh credential behind secret and stamps the owning
// session as logged out. The session row is kept for the user's history until
// housekeeping removes it.
func (s *RefreshService) Logout(ctx context.Context, userID, secret string) error {
	if secret == "" {
		return ErrNotFound
	}
	now := s.now()

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		cred, err := tx.RefreshCredentials().GetRefreshCredentialByHash(ctx, s.Digest(secret))
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		sess, err := tx.Sessions().GetSessionByID(ctx, cred.SessionID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if sess.UserID != userID {
			return ErrNotOwner
		}

		if err := tx.RefreshCredentials().DeleteRefreshCredentialBySession(ctx, sess.ID); err != nil {
			return err
		}
		if err := tx.Sessions().MarkLoggedOut(ctx, sess.ID, now); err != nil {
			return err
		}

		metrics.SessionsEnded.WithLabelValues(metrics.ReasonLogout).Inc()
		return nil
	})
}

func (s *RefreshService) ttl() time.Duration {
	if s.TTL <= 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return s.TTL
}

func (s *RefreshService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
