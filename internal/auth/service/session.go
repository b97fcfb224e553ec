package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/aussiebroadwan/sessiond/internal/auth/store"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// SessionService lists and revokes a user's sessions.
type SessionService struct {
	Store store.Store
}

// ListSessions is read-only. Summaries come back newest first and never
// include credential digests or fingerprints.
func (s *SessionService) ListSessions(ctx context.Context, userID string) (domain.SessionOverview, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.SessionOverview{}, ErrNotFound
	}
	if err != nil {
		return domain.SessionOverview{}, fmt.Errorf("load user: %w", err)
	}

	sessions, err := s.Store.Sessions().ListSessionsByUser(ctx, userID)
	if err != nil {
		return domain.SessionOverview{}, fmt.Errorf("list sessions: %w", err)
	}

	out := domain.SessionOverview{
		LoginCount: user.LoginCount,
		Sessions:   make([]domain.SessionSummary, 0, len(sessions)),
	}
	for _, sess := range sessions {
		if out.LastLoginAt == nil || sess.LoginAt.After(*out.LastLoginAt) {
			at := sess.LoginAt
			out.LastLoginAt = &at
		}
		if sess.Active() {
			out.TotalActiveLogin++
		}
		out.Sessions = append(out.Sessions, sess.Summary())
	}
	return out, nil
}

// EndSession deletes one of the user's sessions along with its refresh
// credential. Ownership is checked before anything is deleted.
func (s *SessionService) EndSession(ctx context.Context, userID, sessionID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		sess, err := tx.Sessions().GetSessionByID(ctx, sessionID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if sess.UserID != userID {
			return ErrNotOwner
		}

		if err := tx.Sessions().DeleteSession(ctx, sessionID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			slogx.FromContext(ctx).Warn("session revocation by non-owner",
				"user_id", userID,
				"session_id", sessionID,
			)
		}
		return err
	}

	metrics.SessionsEnded.WithLabelValues(metrics.ReasonUser).Inc()
	return nil
}

// EndUserSessions is EndAllSessions for an administrator acting on another
// account; an unknown user is ErrNotFound.
func (s *SessionService) EndUserSessions(ctx context.Context, userID string) (int64, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	return s.EndAllSessions(ctx, userID)
}

// EndAllSessions deletes every session the user has and reports how many
// were removed.
func (s *SessionService) EndAllSessions(ctx context.Context, userID string) (int64, error) {
	n, err := s.Store.Sessions().DeleteSessionsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	metrics.SessionsEnded.WithLabelValues(metrics.ReasonAll).Add(float64(n))
	return n, nil
}
