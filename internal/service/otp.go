package service

import (
	"context"

	"shopauth/internal/domain"
)

// OTPService generates, persists and delivers email verification codes.
// Validate never deletes the row; callers consume codes through the store
// after a successful check, so dry-run validation stays possible.
type OTPService interface {
	Send(ctx context.Context, email string, typ domain.VerificationCodeType) (*domain.VerificationCode, error)
	Validate(ctx context.Context, email, code string, typ domain.VerificationCodeType) (*domain.VerificationCode, error)
}
