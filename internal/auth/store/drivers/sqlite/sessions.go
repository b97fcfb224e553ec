package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/store/drivers/sqlite/gen"
)

type sessionsRepo struct {
	q *gen.Queries
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	err := r.q.CreateSession(ctx, gen.CreateSessionParams{
		ID:        s.ID,
		UserID:    s.UserID,
		LoginAt:   utc(s.LoginAt),
		LogoutAt:  mapOptionalTime(s.LogoutAt),
		Ip:        s.IP,
		UserAgent: s.UserAgent,
		Location:  s.Location,
		Metadata:  mapMetadata(s.Metadata),
	})
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	row, err := r.q.GetSessionByID(ctx, id)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return mapSession(row), nil
}

func (r *sessionsRepo) ListSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.q.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapSession(row))
	}
	return out, nil
}

func (r *sessionsRepo) MarkLoggedOut(ctx context.Context, id string, at time.Time) error {
	return expectOne(r.q.MarkSessionLoggedOut(ctx, gen.MarkSessionLoggedOutParams{
		LogoutAt: sql.NullTime{Time: at.UTC(), Valid: true},
		ID:       id,
	}))
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return expectOne(r.q.DeleteSession(ctx, id))
}

func (r *sessionsRepo) DeleteSessionsByUser(ctx context.Context, userID string) (int64, error) {
	return r.q.DeleteSessionsByUser(ctx, userID)
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, now, logoutCutoff time.Time) (int64, error) {
	return r.q.DeleteStaleSessions(ctx, gen.DeleteStaleSessionsParams{
		ExpiresAt: now.UTC(),
		LogoutAt:  sql.NullTime{Time: logoutCutoff.UTC(), Valid: true},
	})
}
