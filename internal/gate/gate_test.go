package gate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("test")
	os.Exit(m.Run())
}

type stubTokenVerifier struct {
	claims map[string]*dto.AccessClaims
}

func (s *stubTokenVerifier) SignAccessToken(p dto.AccessPayload) (string, error) { return "", nil }

func (s *stubTokenVerifier) SignRefreshToken(p dto.RefreshPayload) (string, error) { return "", nil }

func (s *stubTokenVerifier) VerifyRefreshToken(string) (*dto.RefreshClaims, error) {
	return nil, domain.ErrInvalidOrExpiredToken
}

func (s *stubTokenVerifier) VerifyAccessToken(token string) (*dto.AccessClaims, error) {
	claims, ok := s.claims[token]
	if !ok {
		return nil, domain.ErrInvalidOrExpiredToken
	}
	return claims, nil
}

type stubRoleAccess struct {
	// grants maps roleID to the (path, method) pairs it may call.
	grants map[int64]map[[2]string]bool
}

func (s *stubRoleAccess) GetActiveWithPermissions(ctx context.Context, roleID int64, path, method string) (*domain.Role, error) {
	grants, ok := s.grants[roleID]
	if !ok {
		return nil, domain.ErrNotFoundRecord
	}
	role := &domain.Role{ID: roleID, Name: domain.RoleClient, IsActive: true}
	if grants[[2]string{path, method}] {
		role.Permissions = []domain.Permission{{Path: path, Method: method}}
	}
	return role, nil
}

func newTestGate() *Gate {
	tokens := &stubTokenVerifier{claims: map[string]*dto.AccessClaims{
		"good-token": {AccessPayload: dto.AccessPayload{UserID: 1, DeviceID: 2, RoleID: 10, RoleName: domain.RoleClient}},
	}}
	roles := &stubRoleAccess{grants: map[int64]map[[2]string]bool{
		10: {
			{"/profile", http.MethodGet}: true,
		},
	}}
	return New(Config{
		Bearer:        NewBearerStrategy(tokens, roles),
		APIKeySecret:  "service-key",
		PaymentAPIKey: "payment-key",
	})
}

func serveGated(t *testing.T, g *Gate, p Policy, r *http.Request) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	var seen *http.Request
	handler := g.Require(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec, seen
}

func TestBearerPolicy(t *testing.T) {
	g := newTestGate()

	t.Run("valid token with matching permission passes", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		r.Header.Set("Authorization", "Bearer good-token")

		rec, seen := serveGated(t, g, DefaultPolicy(), r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		actor, ok := ActorFromContext(seen.Context())
		if !ok || actor.UserID != 1 {
			t.Fatalf("actor missing from context: %+v", actor)
		}
		role, ok := RolePermissionsFromContext(seen.Context())
		if !ok || len(role.Permissions) != 1 {
			t.Fatalf("role permissions missing: %+v", role)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		rec, _ := serveGated(t, g, DefaultPolicy(), r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		r.Header.Set("Authorization", "Bearer forged")
		rec, _ := serveGated(t, g, DefaultPolicy(), r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("no permission for path and method reads as forbidden", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/profile", nil)
		r.Header.Set("Authorization", "Bearer good-token")
		rec, _ := serveGated(t, g, DefaultPolicy(), r)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["message"] != domain.ErrForbidden.Code {
			t.Fatalf("message = %q", body["message"])
		}
	})
}

func TestAPIKeyStrategies(t *testing.T) {
	g := newTestGate()
	apiKeyPolicy := Policy{Strategies: []StrategyName{APIKey}, Condition: And}
	paymentPolicy := Policy{Strategies: []StrategyName{PaymentAPIKey}, Condition: And}

	t.Run("matching service key", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/internal", nil)
		r.Header.Set("X-API-Key", "service-key")
		rec, _ := serveGated(t, g, apiKeyPolicy, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("wrong service key", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/internal", nil)
		r.Header.Set("X-API-Key", "nope")
		rec, _ := serveGated(t, g, apiKeyPolicy, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("payment key rides the authorization header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/webhooks/payment", nil)
		r.Header.Set("Authorization", "Bearer payment-key")
		rec, _ := serveGated(t, g, paymentPolicy, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("empty configured key never matches", func(t *testing.T) {
		bare := New(Config{Bearer: NewBearerStrategy(&stubTokenVerifier{}, &stubRoleAccess{})})
		r := httptest.NewRequest(http.MethodPost, "/internal", nil)
		r.Header.Set("X-API-Key", "")
		rec, _ := serveGated(t, bare, apiKeyPolicy, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestPolicyComposition(t *testing.T) {
	g := newTestGate()

	t.Run("or succeeds when any strategy passes", func(t *testing.T) {
		p := Policy{Strategies: []StrategyName{Bearer, APIKey}, Condition: Or}
		r := httptest.NewRequest(http.MethodPost, "/internal", nil)
		r.Header.Set("X-API-Key", "service-key")
		rec, _ := serveGated(t, g, p, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("or fails when every strategy fails", func(t *testing.T) {
		p := Policy{Strategies: []StrategyName{Bearer, APIKey}, Condition: Or}
		r := httptest.NewRequest(http.MethodPost, "/internal", nil)
		rec, _ := serveGated(t, g, p, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("and requires every strategy", func(t *testing.T) {
		p := Policy{Strategies: []StrategyName{APIKey, PaymentAPIKey}, Condition: And}
		r := httptest.NewRequest(http.MethodPost, "/internal", nil)
		r.Header.Set("X-API-Key", "service-key")
		// No payment key: the second strategy fails the whole policy.
		rec, _ := serveGated(t, g, p, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}

		r.Header.Set("Authorization", "Bearer payment-key")
		rec, _ = serveGated(t, g, p, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("none strategy is public", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/open", nil)
		rec, _ := serveGated(t, g, Public(), r)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("empty policy falls back to bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		rec, _ := serveGated(t, g, Policy{}, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown strategy name rejects", func(t *testing.T) {
		p := Policy{Strategies: []StrategyName{"Imaginary"}, Condition: And}
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		rec, _ := serveGated(t, g, p, r)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}
