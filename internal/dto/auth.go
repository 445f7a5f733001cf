package dto

import (
	"shopauth/internal/domain"
)

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Code            string `json:"code"`
}

func (r RegisterRequest) Validate() error {
	if r.Password != r.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	return nil
}

type SendOTPRequest struct {
	Email string                      `json:"email"`
	Type  domain.VerificationCodeType `json:"type"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Proof extracts the optional second factor. Login allows absence (the
// orchestrator rejects absence only for 2FA-enabled accounts) but never
// both proofs at once.
func (r LoginRequest) Proof() (*TwoFactorProof, error) {
	return proofFrom(r.TOTPCode, r.Code, false)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ForgotPasswordRequest) Validate() error {
	if r.NewPassword != r.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	return nil
}

type DisableTwoFactorRequest struct {
	TOTPCode string `json:"totpCode,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Proof enforces the exactly-one-of-two contract at the DTO boundary:
// disabling 2FA requires a TOTP code or an email code, never both and
// never neither.
func (r DisableTwoFactorRequest) Proof() (*TwoFactorProof, error) {
	return proofFrom(r.TOTPCode, r.Code, true)
}

type RegisterResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	RoleID      int64  `json:"roleId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TwoFactorSetupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

type AuthorizationURLResponse struct {
	URL string `json:"url"`
}
