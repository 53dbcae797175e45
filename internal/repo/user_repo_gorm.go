package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campus-leave/internal/domain"
)

var userSortColumns = map[string]string{
	"name":       "users.name",
	"email":      "users.email",
	"department": "users.department",
	"phone":      "users.phone",
	"role":       "users.role_id",
	"createdAt":  "users.created_at",
}

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) CreateWithBalance(ctx context.Context, u *domain.User, b *domain.LeaveBalance) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		b.UserID = u.ID
		return tx.Create(b).Error
	})
	if isDupKey(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Save(u).Error
	if isDupKey(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("approve_by = ?", id).Model(&domain.LeaveRequest{}).
			Update("approve_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.LeaveRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.LeaveBalance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&domain.BlogPost{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		if !found {
			// nothing to delete; undo the cleanup above
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return found, err
}

func (r *UserRepo) filtered(ctx context.Context, f domain.UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.ExcludeID != "" {
		q = q.Where("users.id <> ?", f.ExcludeID)
	}
	if f.RoleID != "" {
		q = q.Where("users.role_id = ?", f.RoleID)
	}
	if f.Department != "" {
		q = q.Where("users.department = ?", f.Department)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("(LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.phone) LIKE ? OR LOWER(users.address) LIKE ?)",
			p, p, p, p)
	}
	return q
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter, pq domain.PageQuery, s domain.Sort) ([]domain.User, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	users := make([]domain.User, 0, pq.Limit)
	err := r.filtered(ctx, f).
		Order(orderBy(userSortColumns, s, rawDesc("users.created_at"))).
		Offset(pq.Offset()).Limit(pq.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) ListByRole(ctx context.Context, role domain.RoleName, dept domain.Department) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Where("role_id = ?", domain.RoleIDOf(role))
	if dept != "" {
		q = q.Where("department = ?", dept)
	}
	var users []domain.User
	if err := q.Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepo) ResetPassword(ctx context.Context, email, hash string, codeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND email = ?", codeID, email).Delete(&domain.OneTimeCode{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrCodeConsumed
		}
		return tx.Model(&domain.User{}).Where("email = ?", email).
			Updates(map[string]any{"password": hash, "provider": domain.ProviderCredentials}).Error
	})
}
