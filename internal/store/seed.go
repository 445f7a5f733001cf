package store

import (
	"context"
	"errors"
	"time"

	"shopauth/internal/domain"
)

type AdminSeed struct {
	Name        string
	Email       string
	Password    string // already hashed by the caller
	PhoneNumber string
}

// Seed creates the three protected roles and the initial admin account.
// It is a no-op when roles already exist.
func (s *Store) Seed(ctx context.Context, admin AdminSeed) error {
	return s.WithTx(ctx, func(tx *Store) error {
		var count int64
		if err := tx.DB.WithContext(ctx).Model(&domain.Role{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		roles := []domain.Role{
			{Name: domain.RoleAdmin, Description: "Admin role", IsActive: true, CreatedAt: now, UpdatedAt: now},
			{Name: domain.RoleClient, Description: "Client role", IsActive: true, CreatedAt: now, UpdatedAt: now},
			{Name: domain.RoleSeller, Description: "Seller role", IsActive: true, CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.DB.WithContext(ctx).Create(&roles).Error; err != nil {
			return err
		}

		var adminRole *domain.Role
		for i := range roles {
			if roles[i].Name == domain.RoleAdmin {
				adminRole = &roles[i]
			}
		}
		if adminRole == nil {
			return errors.New("admin role missing after seed")
		}

		return tx.Users().Create(ctx, &domain.User{
			Name:        admin.Name,
			Email:       admin.Email,
			Password:    admin.Password,
			PhoneNumber: admin.PhoneNumber,
			Status:      domain.UserStatusActive,
			RoleID:      adminRole.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
}
