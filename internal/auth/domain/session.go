package domain

import (
	"encoding/json"
	"time"
)

// Session is one login event. It owns at most one refresh credential.
type Session struct {
	ID        string
	UserID    string
	LoginAt   time.Time
	LogoutAt  *time.Time
	IP        string
	UserAgent string
	Location  string
	Metadata  json.RawMessage // JSON object, may be nil
}

// Active reports whether the session has no recorded logout.
func (s Session) Active() bool { return s.LogoutAt == nil }

// RefreshCredential is the stored half of an opaque refresh secret. Only the
// digest of the secret is kept.
type RefreshCredential struct {
	ID          string
	SessionID   string
	Fingerprint string
	TokenHash   string
	ExpiresAt   time.Time
	Revoked     bool
	CreatedAt   time.Time
}

// Usable reports whether the credential may still be rotated at now.
func (c RefreshCredential) Usable(now time.Time) bool {
	return !c.Revoked && now.Before(c.ExpiresAt)
}

// SessionSummary is the public view of a session. Digests and fingerprints
// are deliberately absent.
type SessionSummary struct {
	ID        string          `json:"id"`
	LoginAt   time.Time       `json:"loginAt"`
	LogoutAt  *time.Time      `json:"logoutAt,omitempty"`
	IP        string          `json:"ip"`
	UserAgent string          `json:"userAgent"`
	Location  string          `json:"location,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

func (s Session) Summary() SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		LoginAt:   s.LoginAt,
		LogoutAt:  s.LogoutAt,
		IP:        s.IP,
		UserAgent: s.UserAgent,
		Location:  s.Location,
		Metadata:  s.Metadata,
	}
}

// SessionOverview is what a user sees when listing their sessions.
type SessionOverview struct {
	LastLoginAt      *time.Time       `json:"lastLoginAt"`
	LoginCount       int64            `json:"loginCount"`
	TotalActiveLogin int64            `json:"totalActiveLogin"`
	Sessions         []SessionSummary `json:"sessions"`
}
