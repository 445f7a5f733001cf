package service

import (
	"context"

	"shopauth/internal/dto"
)

// AuthService is the orchestrator behind every authentication flow.
type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, userAgent string) (*dto.TokenPair, error)
	GenerateTokens(ctx context.Context, p dto.AccessPayload) (*dto.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken, ip, userAgent string) (*dto.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest) error
	SetupTwoFactorAuth(ctx context.Context, userID int64) (*dto.TwoFactorSetupResponse, error)
	DisableTwoFactorAuth(ctx context.Context, userID int64, proof *dto.TwoFactorProof) error
}
