package dto

import (
	"time"

	"campus-leave/internal/domain"
)

type BlogRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

type BlogListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Search string `form:"search" binding:"max=100"`
}

type BlogAuthor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type BlogView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    BlogAuthor `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func NewBlogView(r *domain.BlogRow) BlogView {
	return BlogView{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Author:    BlogAuthor{ID: r.AuthorID, Name: r.AuthorName, Image: r.AuthorImage},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
