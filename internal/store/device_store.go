package store

import (
	"context"
	"time"

	"shopauth/internal/domain"

	"gorm.io/gorm"
)

type DeviceStore struct{ db *gorm.DB }

func (s *Store) Devices() *DeviceStore { return &DeviceStore{db: s.DB} }

func (d *DeviceStore) Create(ctx context.Context, device *domain.Device) error {
	return translate(d.db.WithContext(ctx).Create(device).Error)
}

// Touch refreshes the audit metadata on an existing device row during a
// token refresh.
func (d *DeviceStore) Touch(ctx context.Context, deviceID int64, ip, userAgent string) error {
	return translate(d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ?", deviceID).
		Updates(map[string]any{
			"ip":          ip,
			"user_agent":  userAgent,
			"last_active": time.Now().UTC(),
		}).Error)
}

func (d *DeviceStore) Deactivate(ctx context.Context, deviceID int64) error {
	return translate(d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ?", deviceID).
		Update("is_active", false).Error)
}
