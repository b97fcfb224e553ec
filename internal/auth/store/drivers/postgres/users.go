package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, username, password_hash, first_name, last_name, full_name, phone,
	role, active, verified, login_count, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.FullName,
		&u.Phone,
		&role,
		&u.Active,
		&u.Verified,
		&u.LoginCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		u.ID, u.Email, u.Username, u.PasswordHash,
		u.FirstName, u.LastName, u.FullName, u.Phone,
		string(u.Role), u.Active, u.Verified, u.LoginCount,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, hash, time.Now().UTC()))
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`,
		userID, string(role), time.Now().UTC()))
}

func (r *usersRepo) IncrementLoginCount(ctx context.Context, userID string) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE users SET login_count = login_count + 1, updated_at = $2 WHERE id = $1`,
		userID, time.Now().UTC()))
}
