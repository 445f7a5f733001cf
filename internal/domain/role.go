package domain

import (
	"time"

	"gorm.io/gorm"
)

// Protected role names seeded at startup. The role-management surface must
// not delete them or alter their base semantics.
const (
	RoleAdmin  = "Admin"
	RoleClient = "Client"
	RoleSeller = "Seller"
)

type Role struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:text;uniqueIndex:ux_roles_name,where:deleted_at IS NULL" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`

	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`

	CreatedByID *int64 `json:"createdById"`
	UpdatedByID *int64 `json:"updatedById"`
	DeletedByID *int64 `json:"deletedById"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Role) TableName() string { return "roles" }

func (r *Role) IsProtected() bool {
	return r.Name == RoleAdmin || r.Name == RoleClient || r.Name == RoleSeller
}

type Permission struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	Path        string `gorm:"type:text;not null;index:ix_permissions_path_method" json:"path"`
	Method      string `gorm:"type:text;not null;index:ix_permissions_path_method" json:"method"`
	Module      string `gorm:"type:text;not null;default:''" json:"module"`

	CreatedByID *int64 `json:"createdById"`
	UpdatedByID *int64 `json:"updatedById"`
	DeletedByID *int64 `json:"deletedById"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Permission) TableName() string { return "permissions" }
