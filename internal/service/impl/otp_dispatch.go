package impl

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/mailer"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/service"
	"shopauth/internal/store"
)

var _ service.OTPService = (*OTPDispatcher)(nil)

// otpUserReader and otpCodeStore are the slices of the credential store
// this dispatcher needs; tests swap in memory fakes.
type otpUserReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpCodeStore interface {
	Upsert(ctx context.Context, code *domain.VerificationCode) error
	Get(ctx context.Context, email, code string, typ domain.VerificationCodeType) (*domain.VerificationCode, error)
}

type OTPDispatcher struct {
	users  otpUserReader
	codes  otpCodeStore
	mailer mailer.Mailer
	ttl    time.Duration
	now    func() time.Time
}

func NewOTPDispatcher(st *store.Store, m mailer.Mailer, ttl time.Duration) *OTPDispatcher {
	return &OTPDispatcher{
		users:  st.Users(),
		codes:  st.VerificationCodes(),
		mailer: m,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Send generates a fresh 6-digit code, upserts it keyed by
// (email, code, type) and hands delivery to the mailer. A delivery failure
// surfaces as FailedToSendOTP but the persisted row stays, so the caller
// may simply retry.
func (d *OTPDispatcher) Send(ctx context.Context, email string, typ domain.VerificationCodeType) (*domain.VerificationCode, error) {
	result := "success"
	defer func() { metrics.OTPSendTotal.WithLabelValues(string(typ), result).Inc() }()

	user, err := d.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, err
	}
	if typ == domain.VerificationRegister && user != nil {
		result = "failure"
		return nil, domain.ErrEmailAlreadyExists
	}
	if typ == domain.VerificationForgotPassword && user == nil {
		result = "failure"
		return nil, domain.ErrEmailNotFound
	}

	code, err := generateOTP()
	if err != nil {
		result = "failure"
		return nil, err
	}

	vc := &domain.VerificationCode{
		Email:     email,
		Code:      code,
		Type:      typ,
		ExpiresAt: d.now().UTC().Add(d.ttl),
		CreatedAt: d.now().UTC(),
	}
	if err := d.codes.Upsert(ctx, vc); err != nil {
		result = "failure"
		return nil, err
	}

	subject := "OTP code"
	body := renderOTPMessage(code, d.ttl)
	if err := d.mailer.Send(ctx, email, subject, body); err != nil {
		result = "failure"
		slog.Warn("otp delivery failed", "email", email, "type", typ, "error", err)
		return nil, domain.ErrFailedToSendOTP
	}

	slog.Info("otp sent", "email", email, "type", typ, "expires_at", vc.ExpiresAt)
	return vc, nil
}

// Validate checks existence and expiry without consuming the row.
func (d *OTPDispatcher) Validate(ctx context.Context, email, code string, typ domain.VerificationCodeType) (*domain.VerificationCode, error) {
	vc, err := d.codes.Get(ctx, email, code, typ)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOTP
		}
		return nil, err
	}
	if vc.Expired(d.now()) {
		return nil, domain.ErrOTPExpired
	}
	return vc, nil
}

// generateOTP draws from [0, 1e6) with a cryptographically strong source
// and zero-pads to six characters.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return formatOTP(n.Int64()), nil
}

func formatOTP(n int64) string {
	return fmt.Sprintf("%06d", n)
}

func renderOTPMessage(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Your verification code is %s. It expires in %d minutes.\r\nIf you did not request this code, you can ignore this message.",
		code, int(ttl.Minutes()),
	)
}
