package dto

import "time"

// AccessPayload is the identity the access token carries and the Request
// Gate attaches to authenticated requests.
type AccessPayload struct {
	UserID   int64  `json:"userId"`
	DeviceID int64  `json:"deviceId"`
	RoleID   int64  `json:"roleId"`
	RoleName string `json:"roleName"`
}

type RefreshPayload struct {
	UserID int64 `json:"userId"`
}

// AccessClaims is a verified access token: the payload plus the expiry
// claim the verifier read back.
type AccessClaims struct {
	AccessPayload
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type RefreshClaims struct {
	RefreshPayload
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
