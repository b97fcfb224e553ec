package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []domain.Role{
		domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleModerator, domain.RoleGuest,
	} {
		require.True(t, r.Valid(), r)
	}
	require.False(t, domain.Role("root").Valid())
	require.False(t, domain.Role("").Valid())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "alice@example.com", domain.NormalizeEmail("  Alice@Example.COM "))
}

func TestRefreshCredentialUsable(t *testing.T) {
	now := time.Now()
	c := domain.RefreshCredential{ExpiresAt: now.Add(time.Minute)}
	require.True(t, c.Usable(now))

	c.Revoked = true
	require.False(t, c.Usable(now))

	c = domain.RefreshCredential{ExpiresAt: now}
	require.False(t, c.Usable(now))
}

func TestSessionSummaryDropsNothingPublic(t *testing.T) {
	out := time.Now()
	s := domain.Session{ID: "s1", UserID: "u1", IP: "1.2.3.4", UserAgent: "ua", LogoutAt: &out}

	sum := s.Summary()
	require.Equal(t, "s1", sum.ID)
	require.Equal(t, "1.2.3.4", sum.IP)
	require.False(t, s.Active())
}
