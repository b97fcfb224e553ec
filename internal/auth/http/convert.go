package http

import (
	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/pkg/authsdk"
)

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName,
		PhoneNumber: u.Phone,
		Role:        u.Role.String(),
		IsActive:    u.Active,
		IsVerified:  u.Verified,
		TotalLogins: u.LoginCount,
	}
}

func toSessionsResponse(o domain.SessionOverview) authsdk.SessionsResponse {
	out := authsdk.SessionsResponse{
		LastLoginAt:      o.LastLoginAt,
		LoginCount:       o.LoginCount,
		TotalActiveLogin: o.TotalActiveLogin,
		Sessions:         make([]authsdk.SessionInfo, 0, len(o.Sessions)),
	}
	for _, s := range o.Sessions {
		out.Sessions = append(out.Sessions, authsdk.SessionInfo{
			ID:        s.ID,
			LoginAt:   s.LoginAt,
			LogoutAt:  s.LogoutAt,
			IP:        s.IP,
			UserAgent: s.UserAgent,
			Location:  s.Location,
			Metadata:  s.Metadata,
		})
	}
	return out
}
