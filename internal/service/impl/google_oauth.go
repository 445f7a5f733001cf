package impl

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/netutil"
	"shopauth/internal/service"
	"shopauth/internal/store"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// StateSecret keys the MAC over the state payload. The payload only
	// carries audit metadata, but signing it keeps a forged state from
	// polluting the device log.
	StateSecret []byte
}

var _ service.GoogleAuthService = (*GoogleService)(nil)

type GoogleService struct {
	oauth       *oauth2.Config
	stateSecret []byte
	store       credentialStore
	hasher      service.Hasher
	auth        service.AuthService

	// userInfoURL is swapped out in tests.
	userInfoURL string
	now         func() time.Time
}

func NewGoogleService(cfg GoogleConfig, st *store.Store, hasher service.Hasher, auth service.AuthService) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		stateSecret: cfg.StateSecret,
		store:       gormStoreAdapter{store: st},
		hasher:      hasher,
		auth:        auth,
		userInfoURL: googleUserInfoURL,
		now:         time.Now,
	}
}

type oauthState struct {
	UserAgent string `json:"userAgent"`
	IP        string `json:"ip"`
}

// AuthorizationURL builds the provider URL with the request's audit
// metadata carried through the redirect in the state parameter.
func (g *GoogleService) AuthorizationURL(userAgent, ip string) (string, error) {
	state, err := g.encodeState(oauthState{UserAgent: userAgent, IP: ip})
	if err != nil {
		return "", err
	}
	return g.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

// Callback exchanges the code, loads the provider profile and issues a
// local token pair, provisioning an account under the Client role when the
// email is unknown.
func (g *GoogleService) Callback(ctx context.Context, code, state string) (*dto.TokenPair, error) {
	meta := g.decodeState(state)

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := g.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, domain.ErrGoogleUserInfo
	}

	user, err := g.store.Users().GetByEmailWithRole(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
		user, err = g.provision(ctx, profile)
		if err != nil {
			return nil, err
		}
	}

	device := &domain.Device{
		UserID:     user.ID,
		UserAgent:  netutil.TruncateUserAgent(meta.UserAgent),
		IP:         meta.IP,
		LastActive: g.now().UTC(),
		IsActive:   true,
		CreatedAt:  g.now().UTC(),
	}
	if err := g.store.Devices().Create(ctx, device); err != nil {
		return nil, err
	}

	return g.auth.GenerateTokens(ctx, dto.AccessPayload{
		UserID:   user.ID,
		DeviceID: device.ID,
		RoleID:   user.RoleID,
		RoleName: roleName(user),
	})
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	resp, err := g.oauth.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var profile googleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// provision creates a local account for a first-time federated login. The
// password is a random UUID hash nobody can log in with directly.
func (g *GoogleService) provision(ctx context.Context, profile *googleProfile) (*domain.User, error) {
	clientRoleID, err := g.store.Roles().ClientRoleID(ctx)
	if err != nil {
		return nil, err
	}
	hash, err := g.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	now := g.now().UTC()
	user := &domain.User{
		Name:        profile.Name,
		Email:       profile.Email,
		Password:    hash,
		PhoneNumber: "",
		Status:      domain.UserStatusActive,
		RoleID:      clientRoleID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if profile.Picture != "" {
		user.Avatar = &profile.Picture
	}
	if err := g.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	role, err := g.store.Roles().GetByID(ctx, clientRoleID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	slog.Info("federated user provisioned", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (g *GoogleService) encodeState(s oauthState) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + g.signState(payload), nil
}

// decodeState never fails the flow: a missing, malformed or forged state
// only degrades the audit metadata to placeholders.
func (g *GoogleService) decodeState(state string) oauthState {
	fallback := oauthState{UserAgent: "Unknown", IP: "Unknown"}
	payload, mac, ok := strings.Cut(state, ".")
	if !ok || !hmac.Equal([]byte(mac), []byte(g.signState(payload))) {
		return fallback
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return fallback
	}
	var s oauthState
	if err := json.Unmarshal(raw, &s); err != nil {
		return fallback
	}
	if s.UserAgent == "" {
		s.UserAgent = "Unknown"
	}
	if s.IP == "" {
		s.IP = "Unknown"
	}
	return s
}

func (g *GoogleService) signState(payload string) string {
	mac := hmac.New(sha256.New, g.stateSecret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
