package impl

import (
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

type accessJWTClaims struct {
	UserID   int64  `json:"userId"`
	DeviceID int64  `json:"deviceId"`
	RoleID   int64  `json:"roleId"`
	RoleName string `json:"roleName"`
	jwt.RegisteredClaims
}

type refreshJWTClaims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

var _ service.TokenService = (*JWTTokenService)(nil)

// JWTTokenService signs HS256 tokens with a dedicated secret and lifetime
// per family. Verification checks signature and time claims only; a token
// signed with the refresh secret never verifies as an access token.
type JWTTokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewJWTTokenService(cfg TokenConfig) *JWTTokenService {
	return &JWTTokenService{cfg: cfg, now: time.Now}
}

func (t *JWTTokenService) SignAccessToken(p dto.AccessPayload) (string, error) {
	now := t.now().UTC()
	claims := accessJWTClaims{
		UserID:   p.UserID,
		DeviceID: p.DeviceID,
		RoleID:   p.RoleID,
		RoleName: p.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.AccessSecret)
}

func (t *JWTTokenService) SignRefreshToken(p dto.RefreshPayload) (string, error) {
	now := t.now().UTC()
	claims := refreshJWTClaims{
		UserID: p.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.RefreshSecret)
}

func (t *JWTTokenService) VerifyAccessToken(token string) (*dto.AccessClaims, error) {
	claims := &accessJWTClaims{}
	if err := t.parse(token, claims, t.cfg.AccessSecret); err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return &dto.AccessClaims{
		AccessPayload: dto.AccessPayload{
			UserID:   claims.UserID,
			DeviceID: claims.DeviceID,
			RoleID:   claims.RoleID,
			RoleName: claims.RoleName,
		},
		ExpiresAt: claims.ExpiresAt.Time,
		IssuedAt:  claims.IssuedAt.Time,
	}, nil
}

func (t *JWTTokenService) VerifyRefreshToken(token string) (*dto.RefreshClaims, error) {
	claims := &refreshJWTClaims{}
	if err := t.parse(token, claims, t.cfg.RefreshSecret); err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return &dto.RefreshClaims{
		RefreshPayload: dto.RefreshPayload{UserID: claims.UserID},
		ExpiresAt:      claims.ExpiresAt.Time,
		IssuedAt:       claims.IssuedAt.Time,
	}, nil
}

func (t *JWTTokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}
