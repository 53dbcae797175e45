package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campus-leave/internal/domain"
)

const blogRowSelect = "blogs.*, COALESCE(users.name, '') AS author_name, COALESCE(users.image, '') AS author_image"

type BlogRepo struct{ db *gorm.DB }

func NewBlogRepo(db *gorm.DB) *BlogRepo { return &BlogRepo{db: db} }

func (r *BlogRepo) Create(ctx context.Context, b *domain.BlogPost) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BlogRepo) FindByID(ctx context.Context, id string) (*domain.BlogPost, error) {
	var b domain.BlogPost
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

// FindRow loads a post with its author's name and image.
func (r *BlogRepo) FindRow(ctx context.Context, id string) (*domain.BlogRow, error) {
	var rows []domain.BlogRow
	err := r.filtered(ctx, "").
		Select(blogRowSelect).
		Where("blogs.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *BlogRepo) Update(ctx context.Context, b *domain.BlogPost) error {
	return r.db.WithContext(ctx).Model(b).
		Updates(map[string]any{"title": b.Title, "content": b.Content}).Error
}

func (r *BlogRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.BlogPost{}).Error
}

func (r *BlogRepo) filtered(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Table("blogs").
		Joins("LEFT JOIN users ON users.id = blogs.author_id")
	if search != "" {
		p := likePattern(search)
		q = q.Where("(LOWER(blogs.title) LIKE ? OR LOWER(blogs.content) LIKE ?)", p, p)
	}
	return q
}

func (r *BlogRepo) List(ctx context.Context, search string, pq domain.PageQuery) ([]domain.BlogRow, int64, error) {
	var total int64
	if err := r.filtered(ctx, search).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]domain.BlogRow, 0, pq.Limit)
	err := r.filtered(ctx, search).
		Select(blogRowSelect).
		Order("blogs.created_at DESC").
		Offset(pq.Offset()).Limit(pq.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
