package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName,
		Phone:        mapOptionalString(u.Phone),
		Role:         string(u.Role),
		Active:       u.Active,
		Verified:     u.Verified,
		LoginCount:   u.LoginCount,
		CreatedAt:    utc(u.CreatedAt),
		UpdatedAt:    utc(u.UpdatedAt),
	})
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return expectOne(r.q.UpdateUserPasswordHash(ctx, gen.UpdateUserPasswordHashParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
		ID:           userID,
	}))
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	return expectOne(r.q.UpdateUserRole(ctx, gen.UpdateUserRoleParams{
		Role:      string(role),
		UpdatedAt: time.Now().UTC(),
		ID:        userID,
	}))
}

func (r *usersRepo) IncrementLoginCount(ctx context.Context, userID string) error {
	return expectOne(r.q.IncrementUserLoginCount(ctx, gen.IncrementUserLoginCountParams{
		UpdatedAt: time.Now().UTC(),
		ID:        userID,
	}))
}
