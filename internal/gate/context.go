package gate

import (
	"context"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
)

type actorKey struct{}
type rolePermissionsKey struct{}

// WithActor attaches the verified token payload as the request's caller
// identity.
func WithActor(ctx context.Context, p *dto.AccessPayload) context.Context {
	return context.WithValue(ctx, actorKey{}, p)
}

func ActorFromContext(ctx context.Context) (*dto.AccessPayload, bool) {
	p, ok := ctx.Value(actorKey{}).(*dto.AccessPayload)
	return p, ok
}

// WithRolePermissions stores the role resolved during the permission
// check, with its permission set narrowed to the current route.
func WithRolePermissions(ctx context.Context, role *domain.Role) context.Context {
	return context.WithValue(ctx, rolePermissionsKey{}, role)
}

func RolePermissionsFromContext(ctx context.Context) (*domain.Role, bool) {
	role, ok := ctx.Value(rolePermissionsKey{}).(*domain.Role)
	return role, ok
}
