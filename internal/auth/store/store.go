package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped store
// hands out repos bound to the same transaction.
type Store interface {
	Users() Users
	Sessions() Sessions
	RefreshCredentials() RefreshCredentials

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Drivers serialise write transactions against each other so that a
	// credential lookup followed by its delete cannot interleave with another
	// rotation of the same credential. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email or username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error

	// IncrementLoginCount bumps the login counter by one.
	IncrementLoginCount(ctx context.Context, userID string) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSessionByID(ctx context.Context, id string) (domain.Session, error)

	// ListSessionsByUser returns a user's sessions, newest login first.
	ListSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error)

	// MarkLoggedOut stamps logout_at on a session that has none yet.
	MarkLoggedOut(ctx context.Context, id string, at time.Time) error

	// DeleteSession removes a session and, by cascade, its refresh credential.
	DeleteSession(ctx context.Context, id string) error

	DeleteSessionsByUser(ctx context.Context, userID string) (int64, error)

	// DeleteStaleSessions removes sessions whose refresh credential expired
	// before now or was revoked, and sessions logged out before logoutCutoff.
	DeleteStaleSessions(ctx context.Context, now, logoutCutoff time.Time) (int64, error)
}

type RefreshCredentials interface {
	// CreateRefreshCredential returns ErrAlreadyExists if the session already
	// owns a credential or the digest is taken.
	CreateRefreshCredential(ctx context.Context, c domain.RefreshCredential) error

	// GetRefreshCredentialByHash looks a credential up by its digest. Inside a
	// transaction the row stays locked until commit.
	GetRefreshCredentialByHash(ctx context.Context, hash string) (domain.RefreshCredential, error)

	// DeleteRefreshCredential deletes the credential only if it still carries
	// the given digest. ErrNotFound means someone else got there first.
	DeleteRefreshCredential(ctx context.Context, id, hash string) error

	DeleteRefreshCredentialBySession(ctx context.Context, sessionID string) error
}
