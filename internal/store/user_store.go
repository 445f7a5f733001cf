package store

import (
	"context"
	"time"

	"shopauth/internal/domain"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByEmailWithRole loads a visible user together with its role, the shape
// the login and federated flows need for token payloads.
func (u *UserStore) GetByEmailWithRole(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := u.db.WithContext(ctx).
		Preload("Role").
		First(&user, "email = ?", email).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) UpdatePassword(ctx context.Context, userID int64, hash string, updatedBy int64) error {
	return translate(u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password":      hash,
			"updated_by_id": updatedBy,
			"updated_at":    time.Now().UTC(),
		}).Error)
}

// SetTOTPSecret stores or clears (nil) the user's TOTP secret.
func (u *UserStore) SetTOTPSecret(ctx context.Context, userID int64, secret *string, updatedBy int64) error {
	return translate(u.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"totp_secret":   secret,
			"updated_by_id": updatedBy,
			"updated_at":    time.Now().UTC(),
		}).Error)
}
