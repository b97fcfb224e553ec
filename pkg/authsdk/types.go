package authsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest is the body of POST /v1/auth/sign-up.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	FullName    string  `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"isActive"`
	IsVerified  bool    `json:"isVerified"`
	TotalLogins int64   `json:"totalLogins"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// Location and Metadata are stored with the session as given.
	Location string          `json:"location,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// SessionData carries the credentials issued by login and refresh. The
// binding secret and fingerprint are only ever delivered as cookies.
type SessionData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionID    string `json:"sessionId"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn"`
}

// LoginResponse is the user summary plus the new session's credentials.
type LoginResponse struct {
	UserResponse
	SessionData SessionData `json:"sessionData"`
}

// RefreshRequest is the optional body of POST /v1/auth/refresh. When
// RefreshToken is empty the __Secure-Rft cookie is used.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type RefreshResponse struct {
	SessionData SessionData `json:"sessionData"`
}

// LogoutRequest is the optional body of POST /v1/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// EndSessionsResponse reports how many sessions a bulk revocation removed.
type EndSessionsResponse struct {
	SessionsEnded int64 `json:"sessionsEnded"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

// ============================================================================
// Session Types
// ============================================================================

// SessionInfo describes one login. Credential material is never included.
type SessionInfo struct {
	ID        string          `json:"id"`
	LoginAt   time.Time       `json:"loginAt"`
	LogoutAt  *time.Time      `json:"logoutAt,omitempty"`
	IP        string          `json:"ip"`
	UserAgent string          `json:"userAgent"`
	Location  string          `json:"location,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// SessionsResponse is returned by the session listing endpoints.
type SessionsResponse struct {
	LastLoginAt      *time.Time    `json:"lastLoginAt"`
	LoginCount       int64         `json:"loginCount"`
	TotalActiveLogin int64         `json:"totalActiveLogin"`
	Sessions         []SessionInfo `json:"sessions"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is the status of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
