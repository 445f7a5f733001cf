package impl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"shopauth/internal/domain"
)

func newTestGoogleService(m *memoryCredStore, userInfoURL string, endpoint oauth2.Endpoint) *GoogleService {
	auth, _ := newTestOrchestrator(m, newStubOTP())
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/auth/google/callback",
			Scopes:       []string{"email", "profile"},
			Endpoint:     endpoint,
		},
		stateSecret: []byte("state-secret"),
		store:       m,
		hasher:      stubHasher{},
		auth:        auth,
		userInfoURL: userInfoURL,
		now:         time.Now,
	}
}

func TestOAuthStateRoundTrip(t *testing.T) {
	g := newTestGoogleService(newMemoryCredStore(), "", oauth2.Endpoint{})

	state, err := g.encodeState(oauthState{UserAgent: "Mozilla/5.0", IP: "192.0.2.4"})
	if err != nil {
		t.Fatalf("encodeState: %v", err)
	}
	meta := g.decodeState(state)
	if meta.UserAgent != "Mozilla/5.0" || meta.IP != "192.0.2.4" {
		t.Fatalf("round trip lost metadata: %+v", meta)
	}
}

func TestOAuthStateForgery(t *testing.T) {
	g := newTestGoogleService(newMemoryCredStore(), "", oauth2.Endpoint{})

	state, err := g.encodeState(oauthState{UserAgent: "ua", IP: "192.0.2.4"})
	if err != nil {
		t.Fatalf("encodeState: %v", err)
	}

	cases := map[string]string{
		"tampered payload": "x" + state,
		"truncated mac":    state[:len(state)-2],
		"no separator":     strings.ReplaceAll(state, ".", ""),
		"empty":            "",
		"garbage":          "not-a-state",
	}
	for name, forged := range cases {
		meta := g.decodeState(forged)
		if meta.UserAgent != "Unknown" || meta.IP != "Unknown" {
			t.Errorf("%s: expected placeholder metadata, got %+v", name, meta)
		}
	}
}

func TestAuthorizationURL(t *testing.T) {
	g := newTestGoogleService(newMemoryCredStore(), "", oauth2.Endpoint{
		AuthURL: "https://accounts.example.com/o/oauth2/auth",
	})

	link, err := g.AuthorizationURL("Mozilla/5.0", "192.0.2.4")
	if err != nil {
		t.Fatalf("AuthorizationURL: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Fatalf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("access_type") != "offline" {
		t.Fatalf("access_type = %q", q.Get("access_type"))
	}
	if q.Get("include_granted_scopes") != "true" {
		t.Fatalf("include_granted_scopes = %q", q.Get("include_granted_scopes"))
	}
	if g.decodeState(q.Get("state")).IP != "192.0.2.4" {
		t.Fatal("state does not decode back to the request metadata")
	}
}

// fakeProvider stands in for the token and userinfo endpoints.
func fakeProvider(t *testing.T, profileJSON string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profileJSON))
	})
	return httptest.NewServer(mux)
}

func TestCallbackProvisionsFirstLogin(t *testing.T) {
	srv := fakeProvider(t, `{"email":"fed@example.com","name":"Fed User","picture":"https://example.com/p.jpg"}`)
	defer srv.Close()

	m := newMemoryCredStore()
	g := newTestGoogleService(m, srv.URL+"/userinfo", oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	})

	state, _ := g.encodeState(oauthState{UserAgent: "ua", IP: "192.0.2.4"})
	pair, err := g.Callback(context.Background(), "auth-code", state)
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}

	user, err := m.Users().GetByEmailWithRole(context.Background(), "fed@example.com")
	if err != nil {
		t.Fatalf("provisioned user missing: %v", err)
	}
	if user.RoleID != 2 {
		t.Fatalf("expected client role, got %d", user.RoleID)
	}
	if user.Avatar == nil || *user.Avatar != "https://example.com/p.jpg" {
		t.Fatal("avatar not captured")
	}
	if len(m.devices) != 1 {
		t.Fatalf("expected one device row, have %d", len(m.devices))
	}
	for _, d := range m.devices {
		if d.IP != "192.0.2.4" {
			t.Fatalf("device IP = %q, want the state metadata", d.IP)
		}
	}
}

func TestCallbackReusesExistingAccount(t *testing.T) {
	srv := fakeProvider(t, `{"email":"alice@example.com","name":"Alice"}`)
	defer srv.Close()

	m := newMemoryCredStore()
	existing := m.addUser(domain.User{Email: "alice@example.com", Password: "hashed:pw"})
	g := newTestGoogleService(m, srv.URL+"/userinfo", oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	})

	state, _ := g.encodeState(oauthState{UserAgent: "ua", IP: "192.0.2.4"})
	if _, err := g.Callback(context.Background(), "auth-code", state); err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if len(m.users) != 1 {
		t.Fatalf("no new account expected, have %d users", len(m.users))
	}
	u, _ := m.Users().GetByID(context.Background(), existing.ID)
	if u.Password != "hashed:pw" {
		t.Fatal("existing credentials must not change")
	}
}

func TestCallbackRejectsEmptyEmail(t *testing.T) {
	srv := fakeProvider(t, `{"name":"No Email"}`)
	defer srv.Close()

	m := newMemoryCredStore()
	g := newTestGoogleService(m, srv.URL+"/userinfo", oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	})

	state, _ := g.encodeState(oauthState{UserAgent: "ua", IP: "192.0.2.4"})
	if _, err := g.Callback(context.Background(), "auth-code", state); err != domain.ErrGoogleUserInfo {
		t.Fatalf("expected ErrGoogleUserInfo, got %v", err)
	}
}
