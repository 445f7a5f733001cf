package domain

import (
	"time"

	"gorm.io/gorm"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusBlocked  UserStatus = "BLOCKED"
)

type User struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:text;not null" json:"name"`
	Email       string     `gorm:"type:citext;uniqueIndex:ux_users_email,where:deleted_at IS NULL" json:"email"`
	Password    string     `gorm:"type:text;not null" json:"-"`
	PhoneNumber string     `gorm:"type:text;not null" json:"phoneNumber"`
	TOTPSecret  *string    `gorm:"type:text" json:"-"`
	Avatar      *string    `gorm:"type:text" json:"avatar"`
	Address     *string    `gorm:"type:text" json:"address"`
	Status      UserStatus `gorm:"type:text;not null;default:ACTIVE" json:"status"`

	RoleID int64 `gorm:"not null;index" json:"roleId"`
	Role   *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	CreatedByID *int64 `json:"createdById"`
	UpdatedByID *int64 `json:"updatedById"`
	DeletedByID *int64 `json:"deletedById"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// TwoFactorEnabled reports whether a TOTP secret has been provisioned.
// A present secret means 2FA is mandatory at login.
func (u *User) TwoFactorEnabled() bool {
	return u.TOTPSecret != nil && *u.TOTPSecret != ""
}
