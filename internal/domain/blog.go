package domain

import "time"

type BlogPost struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"authorId"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BlogPost) TableName() string { return "blogs" }

type BlogRow struct {
	BlogPost
	AuthorName  string
	AuthorImage string
}

func (b *BlogPost) EditableBy(id Identity) bool {
	return b.AuthorID == id.ID || id.Role == RoleAdmin
}
