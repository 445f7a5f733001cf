package service

import (
	"context"

	"shopauth/internal/dto"
)

// GoogleAuthService exchanges an OAuth authorization code for a local
// token pair, auto-provisioning an account on first login.
type GoogleAuthService interface {
	AuthorizationURL(userAgent, ip string) (string, error)
	Callback(ctx context.Context, code, state string) (*dto.TokenPair, error)
}
