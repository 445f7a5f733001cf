package domain

import "time"

// Device is an audit record of a login/refresh/federated-login origin.
// One row per login event; rows are updated (ip/agent refresh, logout
// deactivation) but never deleted by the auth core.
type Device struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"userId"`
	UserAgent  string    `gorm:"type:text;not null" json:"userAgent"`
	IP         string    `gorm:"type:text;not null" json:"ip"`
	LastActive time.Time `gorm:"not null" json:"lastActive"`
	IsActive   bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}

func (Device) TableName() string { return "devices" }
