package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-leave/internal/domain"
)

// Migrate creates or updates every table and seeds the fixed role rows.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&domain.Role{},
		&domain.User{},
		&domain.LeaveBalance{},
		&domain.LeaveRequest{},
		&domain.OneTimeCode{},
		&domain.BlogPost{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return SeedRoles(ctx, db)
}

func SeedRoles(ctx context.Context, db *gorm.DB) error {
	roles := append([]domain.Role(nil), domain.Roles...)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&roles).Error
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}
