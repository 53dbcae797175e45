package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"campus-leave/internal/domain"
)

type OTPRepo struct{ db *gorm.DB }

func NewOTPRepo(db *gorm.DB) *OTPRepo { return &OTPRepo{db: db} }

func (r *OTPRepo) Replace(ctx context.Context, c *domain.OneTimeCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", c.Email).Delete(&domain.OneTimeCode{}).Error; err != nil {
			return err
		}
		return tx.Create(c).Error
	})
}

func (r *OTPRepo) Find(ctx context.Context, email, code string) (*domain.OneTimeCode, error) {
	var c domain.OneTimeCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ?", email, code).
		Order("created_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *OTPRepo) DeleteIssuedBefore(ctx context.Context, t time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", t).Delete(&domain.OneTimeCode{})
	return res.RowsAffected, res.Error
}
