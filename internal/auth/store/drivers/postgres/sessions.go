package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, login_at, logout_at, ip, user_agent, location, metadata`

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var (
		s        domain.Session
		metadata []byte
	)
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.LoginAt,
		&s.LogoutAt,
		&s.IP,
		&s.UserAgent,
		&s.Location,
		&metadata,
	)
	if err != nil {
		return domain.Session{}, err
	}
	s.LoginAt = s.LoginAt.UTC()
	if s.LogoutAt != nil {
		out := s.LogoutAt.UTC()
		s.LogoutAt = &out
	}
	if len(metadata) > 0 {
		s.Metadata = json.RawMessage(metadata)
	}
	return s, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	var logoutAt *time.Time
	if s.LogoutAt != nil {
		t := s.LogoutAt.UTC()
		logoutAt = &t
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
	`, s.ID, s.UserID, s.LoginAt.UTC(), logoutAt, s.IP, s.UserAgent, s.Location, nullableJSON(s.Metadata))
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id string) (domain.Session, error) {
	s, err := scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) ListSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = $1
		ORDER BY login_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) MarkLoggedOut(ctx context.Context, id string, at time.Time) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE sessions SET logout_at = $2 WHERE id = $1 AND logout_at IS NULL`,
		id, at.UTC()))
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id))
}

func (r *sessionsRepo) DeleteSessionsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *sessionsRepo) DeleteStaleSessions(ctx context.Context, now, logoutCutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE id IN (
			SELECT session_id FROM refresh_credentials
			WHERE expires_at <= $1 OR revoked
		)
		OR (logout_at IS NOT NULL AND logout_at <= $2)
	`, now.UTC(), logoutCutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
