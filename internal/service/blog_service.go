package service

import (
	"context"
	"strings"

	"campus-leave/internal/domain"
	"campus-leave/internal/dto"
	"campus-leave/pkg/apperr"
	"campus-leave/pkg/utils"
)

type BlogService struct {
	blogs domain.BlogRepository
}

func NewBlogService(blogs domain.BlogRepository) *BlogService { return &BlogService{blogs: blogs} }

func (s *BlogService) Create(ctx context.Context, author domain.Identity, in dto.BlogRequest) (*dto.BlogView, error) {
	b := &domain.BlogPost{
		ID:       utils.NewID(),
		AuthorID: author.ID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
	}
	if err := s.blogs.Create(ctx, b); err != nil {
		return nil, apperr.Internal("create blog", err)
	}
	v := dto.NewBlogView(&domain.BlogRow{BlogPost: *b, AuthorName: author.Name, AuthorImage: author.Image})
	return &v, nil
}

func (s *BlogService) List(ctx context.Context, q dto.BlogListQuery) (domain.Page[dto.BlogView], error) {
	pq := domain.NewPageQuery(q.Page, q.Limit)
	rows, total, err := s.blogs.List(ctx, q.Search, pq)
	if err != nil {
		return domain.Page[dto.BlogView]{}, apperr.Internal("list blogs", err)
	}
	items := make([]dto.BlogView, 0, len(rows))
	for i := range rows {
		items = append(items, dto.NewBlogView(&rows[i]))
	}
	return domain.Page[dto.BlogView]{Items: items, Total: total, Query: pq}, nil
}

func (s *BlogService) editable(ctx context.Context, actor domain.Identity, id string) (*domain.BlogPost, error) {
	b, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find blog", err)
	}
	if b == nil {
		return nil, apperr.NotFound("Blog not found")
	}
	if !b.EditableBy(actor) {
		return nil, apperr.Forbidden("Only the author or an admin can change this blog")
	}
	return b, nil
}

func (s *BlogService) Update(ctx context.Context, actor domain.Identity, id string, in dto.BlogRequest) (*dto.BlogView, error) {
	b, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	b.Title = strings.TrimSpace(in.Title)
	b.Content = in.Content
	if err := s.blogs.Update(ctx, b); err != nil {
		return nil, apperr.Internal("update blog", err)
	}
	row, err := s.blogs.FindRow(ctx, b.ID)
	if err != nil {
		return nil, apperr.Internal("reload blog", err)
	}
	if row == nil {
		return nil, apperr.NotFound("Blog not found")
	}
	v := dto.NewBlogView(row)
	return &v, nil
}

func (s *BlogService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		return apperr.Internal("delete blog", err)
	}
	return nil
}
