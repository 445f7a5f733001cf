package store

import (
	"context"

	"shopauth/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RefreshTokenStore struct{ db *gorm.DB }

func (s *Store) RefreshTokens() *RefreshTokenStore { return &RefreshTokenStore{db: s.DB} }

func (r *RefreshTokenStore) Create(ctx context.Context, rt *domain.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(rt).Error)
}

// Consume atomically removes the row for the presented token and returns
// it (DELETE ... RETURNING). A nil result with ErrRecordNotFound means the
// token was already rotated or never existed; two racing refreshes cannot
// both win.
func (r *RefreshTokenStore) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	rt := domain.RefreshToken{Token: token}
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("token = ?", token).
		Delete(&rt)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return &rt, nil
}
