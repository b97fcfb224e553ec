package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/aussiebroadwan/sessiond/internal/auth/store"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/idx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// MinPasswordLength is the shortest password Register and ChangePassword accept.
const MinPasswordLength = 8

// PasswordHasher is implemented by cryptox.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) error
	NeedsRehash(encoded string) bool
}

type Registration struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

type LoginRequest struct {
	Email    string
	Password string
	Signals  cryptox.ClientSignals
	Location string
	Metadata json.RawMessage
}

// LoginResult carries everything the transport hands back to the client.
type LoginResult struct {
	User   domain.User
	Access AccessGrant
	Login  Login
}

// AuthService runs the account flows that sit in front of the session
// machinery: registration, password login, password change and role changes.
type AuthService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Access   *AccessService
	Refresh  *RefreshService
	Sessions *SessionService

	// BootstrapAdmins lists normalised emails that register as super_admin.
	BootstrapAdmins []string

	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Register creates an active, unverified account.
func (s *AuthService) Register(ctx context.Context, in Registration) (domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := validateRegistration(email, in); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		FullName:     firstName + " " + lastName,
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = &phone
	}
	if s.isBootstrapAdmin(email) {
		u.Role = domain.RoleSuperAdmin
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAccountExists
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func validateRegistration(email string, in Registration) error {
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not valid", ErrInvalidRequest)
	}
	if len(in.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, MinPasswordLength)
	}
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidRequest)
	}
	return nil
}

// Login checks the password, then opens a new session with a fresh access
// grant and refresh credential. Unknown emails, wrong passwords and inactive
// accounts are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginRequest) (LoginResult, error) {
	log := slogx.FromContext(ctx)
	email := domain.NormalizeEmail(in.Email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Burn the same hashing cost as a real check.
		_ = s.Hasher.Verify(in.Password, s.dummy())
		metrics.Logins.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Hasher.Verify(in.Password, user.PasswordHash); err != nil || !user.Active {
		metrics.Logins.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	if s.Hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.Hasher.Hash(in.Password); err == nil {
			if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				log.Warn("password rehash failed", "user_id", user.ID, "err", err)
			}
		}
	}

	grant, err := s.Access.IssueAccess(user.ID, user.Role)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return LoginResult{}, fmt.Errorf("issue access: %w", err)
	}

	login, err := s.Refresh.CreateLogin(ctx, NewLogin{
		UserID:      user.ID,
		Fingerprint: cryptox.ClientFingerprint(in.Signals),
		IP:          in.Signals.IP,
		UserAgent:   in.Signals.UserAgent,
		Location:    in.Location,
		Metadata:    in.Metadata,
	})
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		return LoginResult{}, fmt.Errorf("create login: %w", err)
	}
	user.LoginCount++

	metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info("user logged in", "user_id", user.ID, "session_id", login.SessionID)
	return LoginResult{User: user, Access: grant, Login: login}, nil
}

// ChangePassword replaces the password hash and ends every session the user
// has, returning how many were ended.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) (int64, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load user: %w", err)
	}

	if err := s.Hasher.Verify(current, user.PasswordHash); err != nil {
		return 0, ErrInvalidCredentials
	}
	if len(next) < MinPasswordLength {
		return 0, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, MinPasswordLength)
	}

	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return 0, fmt.Errorf("update password: %w", err)
	}

	n, err := s.Sessions.EndAllSessions(ctx, userID)
	if err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Info("password changed", "user_id", userID, "sessions_ended", n)
	return n, nil
}

// SetRole changes a user's role. Tokens already issued keep the old role
// until they expire.
func (s *AuthService) SetRole(ctx context.Context, userID string, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, role)
	}
	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}
	slogx.FromContext(ctx).Info("role changed", "user_id", userID, "role", role)
	return nil
}

func (s *AuthService) isBootstrapAdmin(email string) bool {
	for _, e := range s.BootstrapAdmins {
		if domain.NormalizeEmail(e) == email {
			return true
		}
	}
	return false
}

// dummy lazily builds a real hash for the unknown-email path.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash("sessiond-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
