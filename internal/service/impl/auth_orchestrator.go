package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/netutil"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/service"
	"shopauth/internal/store"

	"golang.org/x/sync/errgroup"
)

var _ service.AuthService = (*AuthOrchestrator)(nil)

// The orchestrator talks to the credential store through these narrow
// interfaces so tests can run against an in-memory fake.
type credentialStore interface {
	Users() userStore
	Roles() roleStore
	Codes() codeStore
	RefreshTokens() refreshTokenStore
	Devices() deviceStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailWithRole(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string, updatedBy int64) error
	SetTOTPSecret(ctx context.Context, userID int64, secret *string, updatedBy int64) error
}

type roleStore interface {
	ClientRoleID(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
}

type codeStore interface {
	Consume(ctx context.Context, email, code string, typ domain.VerificationCodeType) (bool, error)
}

type refreshTokenStore interface {
	Create(ctx context.Context, rt *domain.RefreshToken) error
	Consume(ctx context.Context, token string) (*domain.RefreshToken, error)
}

type deviceStore interface {
	Create(ctx context.Context, device *domain.Device) error
	Touch(ctx context.Context, deviceID int64, ip, userAgent string) error
	Deactivate(ctx context.Context, deviceID int64) error
}

type AuthOrchestrator struct {
	store  credentialStore
	hasher service.Hasher
	tokens service.TokenService
	totp   service.TOTPService
	otp    service.OTPService
	now    func() time.Time
}

func NewAuthOrchestrator(
	st *store.Store,
	hasher service.Hasher,
	tokens service.TokenService,
	totp service.TOTPService,
	otp service.OTPService,
) *AuthOrchestrator {
	return &AuthOrchestrator{
		store:  gormStoreAdapter{store: st},
		hasher: hasher,
		tokens: tokens,
		totp:   totp,
		otp:    otp,
		now:    time.Now,
	}
}

// Register validates the REGISTER code, creates the account under the
// default Client role and consumes the code. Creation and consumption run
// concurrently; they have no data dependency.
func (a *AuthOrchestrator) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	result := "success"
	defer func() { metrics.RegistrationsTotal.WithLabelValues(result).Inc() }()

	if err := r.Validate(); err != nil {
		result = "failure"
		return nil, err
	}
	if _, err := a.otp.Validate(ctx, r.Email, r.Code, domain.VerificationRegister); err != nil {
		result = "failure"
		return nil, err
	}

	clientRoleID, err := a.store.Roles().ClientRoleID(ctx)
	if err != nil {
		result = "failure"
		return nil, err
	}
	hash, err := a.hasher.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, err
	}

	now := a.now().UTC()
	user := &domain.User{
		Name:        r.Name,
		Email:       r.Email,
		Password:    hash,
		PhoneNumber: r.PhoneNumber,
		Status:      domain.UserStatusActive,
		RoleID:      clientRoleID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.store.Users().Create(gctx, user)
	})
	g.Go(func() error {
		_, err := a.store.Codes().Consume(gctx, r.Email, r.Code, domain.VerificationRegister)
		return err
	})
	if err := g.Wait(); err != nil {
		result = "failure"
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &dto.RegisterResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		RoleID:      user.RoleID,
	}, nil
}

// Login authenticates with password plus, for 2FA-enabled accounts,
// exactly one of a TOTP code or a LOGIN email code. The device row is
// recorded before the password check on purpose: failed attempts still
// leave an audit trail.
func (a *AuthOrchestrator) Login(ctx context.Context, r dto.LoginRequest, ip, userAgent string) (*dto.TokenPair, error) {
	result := "success"
	defer func() { metrics.LoginsTotal.WithLabelValues(result).Inc() }()

	user, err := a.store.Users().GetByEmailWithRole(ctx, r.Email)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}

	proof, err := r.Proof()
	if err != nil {
		result = "failure"
		return nil, err
	}
	if user.TwoFactorEnabled() {
		if proof == nil {
			result = "failure"
			return nil, domain.ErrInvalidTOTPAndCode
		}
		if err := a.checkSecondFactor(ctx, user, proof, domain.VerificationLogin); err != nil {
			result = "failure"
			return nil, err
		}
	}

	device := &domain.Device{
		UserID:     user.ID,
		UserAgent:  netutil.TruncateUserAgent(userAgent),
		IP:         netutil.NormalizeIP(ip),
		LastActive: a.now().UTC(),
		IsActive:   true,
		CreatedAt:  a.now().UTC(),
	}
	if err := a.store.Devices().Create(ctx, device); err != nil {
		result = "failure"
		return nil, err
	}

	if !a.hasher.Compare(r.Password, user.Password) {
		result = "failure"
		return nil, domain.ErrInvalidPassword
	}

	if proof != nil && proof.Kind == dto.ProofEmailOTP {
		// Successful use consumes the LOGIN code.
		if _, err := a.store.Codes().Consume(ctx, user.Email, proof.Code, domain.VerificationLogin); err != nil {
			result = "failure"
			return nil, err
		}
	}

	pair, err := a.GenerateTokens(ctx, dto.AccessPayload{
		UserID:   user.ID,
		DeviceID: device.ID,
		RoleID:   user.RoleID,
		RoleName: roleName(user),
	})
	if err != nil {
		result = "failure"
		return nil, err
	}
	slog.Info("user logged in", "user_id", user.ID, "device_id", device.ID)
	return pair, nil
}

// GenerateTokens signs both tokens concurrently, reads the authoritative
// expiry back off the freshly signed refresh token and persists the
// rotation row.
func (a *AuthOrchestrator) GenerateTokens(ctx context.Context, p dto.AccessPayload) (*dto.TokenPair, error) {
	result := "success"
	defer func() { metrics.TokensIssuedTotal.WithLabelValues("issue", result).Inc() }()

	var access, refresh string
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		access, err = a.tokens.SignAccessToken(p)
		return err
	})
	g.Go(func() error {
		var err error
		refresh, err = a.tokens.SignRefreshToken(dto.RefreshPayload{UserID: p.UserID})
		return err
	})
	if err := g.Wait(); err != nil {
		result = "failure"
		return nil, err
	}

	claims, err := a.tokens.VerifyRefreshToken(refresh)
	if err != nil {
		result = "failure"
		return nil, err
	}
	if err := a.store.RefreshTokens().Create(ctx, &domain.RefreshToken{
		Token:     refresh,
		UserID:    p.UserID,
		DeviceID:  p.DeviceID,
		ExpiresAt: claims.ExpiresAt,
		CreatedAt: a.now().UTC(),
	}); err != nil {
		result = "failure"
		return nil, err
	}

	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshToken rotates a refresh token: the presented token is consumed
// atomically, then the device update and the new pair are produced
// concurrently. Errors that are not already domain errors are normalized
// to UnauthorizedAccess.
func (a *AuthOrchestrator) RefreshToken(ctx context.Context, refreshToken, ip, userAgent string) (*dto.TokenPair, error) {
	result := "success"
	defer func() { metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc() }()

	pair, err := a.refresh(ctx, refreshToken, ip, userAgent)
	if err != nil {
		result = "failure"
		if _, ok := domain.AsAuthError(err); ok {
			return nil, err
		}
		slog.Warn("refresh failed", "error", err)
		return nil, domain.ErrUnauthorizedAccess
	}
	return pair, nil
}

func (a *AuthOrchestrator) refresh(ctx context.Context, refreshToken, ip, userAgent string) (*dto.TokenPair, error) {
	if _, err := a.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return nil, err
	}

	rt, err := a.store.RefreshTokens().Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrRefreshTokenAlreadyUsed
		}
		return nil, err
	}

	user, err := a.store.Users().GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}
	role, err := a.store.Roles().GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	var pair *dto.TokenPair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.store.Devices().Touch(gctx, rt.DeviceID, netutil.NormalizeIP(ip), netutil.TruncateUserAgent(userAgent))
	})
	g.Go(func() error {
		var err error
		pair, err = a.GenerateTokens(gctx, dto.AccessPayload{
			UserID:   user.ID,
			DeviceID: rt.DeviceID,
			RoleID:   role.ID,
			RoleName: role.Name,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("refresh token rotated", "user_id", user.ID, "device_id", rt.DeviceID)
	return pair, nil
}

// Logout verifies the token's signature (a replayed-but-well-formed token
// still logs out), deletes the rotation row and deactivates the device.
func (a *AuthOrchestrator) Logout(ctx context.Context, refreshToken string) error {
	if _, err := a.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return err
	}
	rt, err := a.store.RefreshTokens().Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrRefreshTokenAlreadyUsed
		}
		return err
	}
	if err := a.store.Devices().Deactivate(ctx, rt.DeviceID); err != nil {
		return err
	}
	slog.Info("user logged out", "user_id", rt.UserID, "device_id", rt.DeviceID)
	return nil
}

// ForgotPassword resets the password after validating the
// FORGOT_PASSWORD code; persisting the new hash and consuming the code
// run concurrently.
func (a *AuthOrchestrator) ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	user, err := a.store.Users().GetByEmail(ctx, r.Email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrEmailNotFound
		}
		return err
	}
	if _, err := a.otp.Validate(ctx, r.Email, r.Code, domain.VerificationForgotPassword); err != nil {
		return err
	}

	hash, err := a.hasher.Hash(r.NewPassword)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.store.Users().UpdatePassword(gctx, user.ID, hash, user.ID)
	})
	g.Go(func() error {
		_, err := a.store.Codes().Consume(gctx, r.Email, r.Code, domain.VerificationForgotPassword)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("password reset", "user_id", user.ID)
	return nil
}

// SetupTwoFactorAuth provisions a TOTP secret. The secret is active the
// moment it is stored; there is no out-of-band confirmation step here.
func (a *AuthOrchestrator) SetupTwoFactorAuth(ctx context.Context, userID int64) (*dto.TwoFactorSetupResponse, error) {
	user, err := a.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrEmailNotFound
		}
		return nil, err
	}
	if user.TwoFactorEnabled() {
		return nil, domain.ErrTOTPAlreadyEnabled
	}

	key, err := a.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}
	if err := a.store.Users().SetTOTPSecret(ctx, userID, &key.Secret, userID); err != nil {
		return nil, err
	}
	slog.Info("2fa enabled", "user_id", userID)
	return &dto.TwoFactorSetupResponse{Secret: key.Secret, URI: key.URI}, nil
}

// DisableTwoFactorAuth clears the secret once exactly one valid proof is
// presented.
func (a *AuthOrchestrator) DisableTwoFactorAuth(ctx context.Context, userID int64, proof *dto.TwoFactorProof) error {
	if proof == nil {
		return domain.ErrInvalidTOTPAndCode
	}
	user, err := a.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrEmailNotFound
		}
		return err
	}
	if !user.TwoFactorEnabled() {
		return domain.ErrTOTPNotEnabled
	}

	if err := a.checkSecondFactor(ctx, user, proof, domain.VerificationDisable2FA); err != nil {
		return err
	}
	if proof.Kind == dto.ProofEmailOTP {
		if _, err := a.store.Codes().Consume(ctx, user.Email, proof.Code, domain.VerificationDisable2FA); err != nil {
			return err
		}
	}

	if err := a.store.Users().SetTOTPSecret(ctx, userID, nil, userID); err != nil {
		return err
	}
	slog.Info("2fa disabled", "user_id", userID)
	return nil
}

func (a *AuthOrchestrator) checkSecondFactor(ctx context.Context, user *domain.User, proof *dto.TwoFactorProof, emailType domain.VerificationCodeType) error {
	switch proof.Kind {
	case dto.ProofTOTP:
		if !a.totp.Verify(user.Email, *user.TOTPSecret, proof.Code) {
			return domain.ErrInvalidTOTP
		}
		return nil
	case dto.ProofEmailOTP:
		_, err := a.otp.Validate(ctx, user.Email, proof.Code, emailType)
		return err
	default:
		return domain.ErrInvalidTOTPAndCode
	}
}

func roleName(u *domain.User) string {
	if u.Role != nil {
		return u.Role.Name
	}
	return ""
}
