package domain

import "time"

// RefreshToken mirrors the signed refresh JWT: the row's expiry is copied
// from the token's exp claim. A token is single-use; rotation deletes the
// presented row while issuing the next pair, so a second presentation of
// the same token no longer resolves.
type RefreshToken struct {
	Token     string    `gorm:"type:text;primaryKey" json:"token"`
	UserID    int64     `gorm:"not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DeviceID  int64     `gorm:"not null" json:"deviceId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
