package store

import (
	"context"
	"sync"

	"shopauth/internal/domain"

	"gorm.io/gorm"
)

type RoleStore struct {
	db *gorm.DB

	// client role id is immutable after seeding; cache the lookup.
	cache *roleIDCache
}

type roleIDCache struct {
	mu       sync.Mutex
	clientID int64
}

var sharedRoleIDCache = &roleIDCache{}

func (s *Store) Roles() *RoleStore { return &RoleStore{db: s.DB, cache: sharedRoleIDCache} }

func (r *RoleStore) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *RoleStore) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// ClientRoleID resolves the default role id for self-registered and
// federated users.
func (r *RoleStore) ClientRoleID(ctx context.Context) (int64, error) {
	r.cache.mu.Lock()
	defer r.cache.mu.Unlock()
	if r.cache.clientID != 0 {
		return r.cache.clientID, nil
	}
	role, err := r.GetByName(ctx, domain.RoleClient)
	if err != nil {
		return 0, err
	}
	r.cache.clientID = role.ID
	return role.ID, nil
}

// GetActiveWithPermissions loads an active, non-deleted role with its
// permission set narrowed to the exact (path, method) pair. The Request
// Gate treats a load failure or an empty permission slice as Forbidden.
func (r *RoleStore) GetActiveWithPermissions(ctx context.Context, roleID int64, path, method string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions", "permissions.deleted_at IS NULL AND permissions.path = ? AND permissions.method = ?", path, method).
		First(&role, "id = ? AND is_active = ?", roleID, true).Error
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}
