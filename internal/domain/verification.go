package domain

import "time"

type VerificationCodeType string

const (
	VerificationRegister       VerificationCodeType = "REGISTER"
	VerificationForgotPassword VerificationCodeType = "FORGOT_PASSWORD"
	VerificationLogin          VerificationCodeType = "LOGIN"
	VerificationDisable2FA     VerificationCodeType = "DISABLE_2FA"
)

// VerificationCode is a single-use email OTP. Uniquely keyed by
// (email, code, type); resending upserts the row instead of duplicating it.
// The dispatcher creates rows, the orchestrator consumes them.
type VerificationCode struct {
	ID        int64                `gorm:"primaryKey" json:"id"`
	Email     string               `gorm:"type:citext;uniqueIndex:ux_verification_email_code_type" json:"email"`
	Code      string               `gorm:"type:text;uniqueIndex:ux_verification_email_code_type" json:"code"`
	Type      VerificationCodeType `gorm:"type:text;uniqueIndex:ux_verification_email_code_type" json:"type"`
	ExpiresAt time.Time            `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time            `gorm:"not null" json:"createdAt"`
}

func (VerificationCode) TableName() string { return "verification_codes" }

func (v *VerificationCode) Expired(now time.Time) bool {
	return v.ExpiresAt.Before(now)
}
