package store

import (
	"context"

	"shopauth/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationStore struct{ db *gorm.DB }

func (s *Store) VerificationCodes() *VerificationStore { return &VerificationStore{db: s.DB} }

// Upsert persists a code keyed by (email, code, type). Resending replaces
// the expiry instead of inserting a second unconsumed row.
func (v *VerificationStore) Upsert(ctx context.Context, code *domain.VerificationCode) error {
	return translate(v.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "code"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
	}).Create(code).Error)
}

func (v *VerificationStore) Get(ctx context.Context, email, code string, typ domain.VerificationCodeType) (*domain.VerificationCode, error) {
	var out domain.VerificationCode
	err := v.db.WithContext(ctx).
		First(&out, "email = ? AND code = ? AND type = ?", email, code, typ).Error
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Consume deletes the row in a single conditional statement and reports
// whether a row was actually removed, giving exactly-once consumption
// without a separate existence check.
func (v *VerificationStore) Consume(ctx context.Context, email, code string, typ domain.VerificationCodeType) (bool, error) {
	res := v.db.WithContext(ctx).
		Where("email = ? AND code = ? AND type = ?", email, code, typ).
		Delete(&domain.VerificationCode{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
