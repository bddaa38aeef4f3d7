package domain

import (
	"context"
	"time"
)

// Post 一条 P.S.：图片 + 文字，Likes 是 likes 表计数的冗余缓存
type Post struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	UserID    string    `gorm:"size:32;not null;index" json:"userId"`
	ImageURL  string    `gorm:"size:512;not null" json:"imagePath"`
	PublicID  string    `gorm:"size:191;not null" json:"publicId"`
	PostText  string    `gorm:"type:text;not null" json:"postText"`
	Likes     int64     `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// PostWithAuthor 管理端列表用
type PostWithAuthor struct {
	Post
	AuthorName string `json:"authorName"`
}

type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	Feed(ctx context.Context, limit int) ([]Post, error)
	ListByUser(ctx context.Context, userID string) ([]Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]Post, error)
	ListWithAuthors(ctx context.Context, offset, limit int) ([]PostWithAuthor, int64, error)
	UpdateText(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) ([]Post, error)
	RecountLikes(ctx context.Context, postIDs []string) error
	Count(ctx context.Context) (int64, error)
}
