package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"shopauth/internal/domain"
	"shopauth/internal/service"

	"github.com/go-chi/chi/v5"
)

// roleAccess is the slice of the credential store the bearer strategy
// needs for its permission check.
type roleAccess interface {
	GetActiveWithPermissions(ctx context.Context, roleID int64, path, method string) (*domain.Role, error)
}

// BearerStrategy verifies the access token and then checks that the
// caller's role holds a permission matching the requested route pattern
// and method. Both the decoded identity and the resolved role land in the
// request context for downstream handlers.
type BearerStrategy struct {
	tokens service.TokenService
	roles  roleAccess
}

func NewBearerStrategy(tokens service.TokenService, roles roleAccess) *BearerStrategy {
	return &BearerStrategy{tokens: tokens, roles: roles}
}

func (b *BearerStrategy) Authenticate(r *http.Request) (*http.Request, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	claims, err := b.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	ctx := WithActor(r.Context(), &claims.AccessPayload)

	role, err := b.roles.GetActiveWithPermissions(ctx, claims.RoleID, routePath(r), r.Method)
	if err != nil {
		slog.Warn("permission lookup failed", "role_id", claims.RoleID, "path", routePath(r), "error", err)
		return nil, domain.ErrForbidden
	}
	if len(role.Permissions) == 0 {
		return nil, domain.ErrForbidden
	}

	ctx = WithRolePermissions(ctx, role)
	return r.WithContext(ctx), nil
}

// routePath prefers the registered chi pattern (e.g. /user/{id}) so
// permissions match route templates, not raw URLs.
func routePath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
