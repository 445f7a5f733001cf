package service

import "shopauth/internal/dto"

// TokenService signs and verifies the two JWT families. Access and refresh
// tokens use independent secrets and lifetimes; verification is pure with
// respect to storage, revocation is the caller's concern.
type TokenService interface {
	SignAccessToken(p dto.AccessPayload) (string, error)
	SignRefreshToken(p dto.RefreshPayload) (string, error)
	VerifyAccessToken(token string) (*dto.AccessClaims, error)
	VerifyRefreshToken(token string) (*dto.RefreshClaims, error)
}
