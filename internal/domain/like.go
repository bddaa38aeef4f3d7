package domain

import (
	"context"
	"time"
)

// Like (user, post) 唯一
type Like struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	UserID    string    `gorm:"size:32;not null;uniqueIndex:idx_like_user_post" json:"userId"`
	PsPostID  string    `gorm:"size:32;not null;uniqueIndex:idx_like_user_post;index" json:"psPostId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }

// LikeRow 管理端列表：带上用户名和帖子文字
type LikeRow struct {
	Like
	UserName string `json:"userName"`
	PostText string `json:"postText"`
}

type LikeRepository interface {
	// Toggle 在一个事务里翻转 (user, post) 的点赞并同步计数
	Toggle(ctx context.Context, userID, postID string) (liked bool, count int64, err error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	PostIDsByUser(ctx context.Context, userID string) ([]string, error)
	FindByID(ctx context.Context, id string) (*Like, error)
	List(ctx context.Context, offset, limit int) ([]LikeRow, int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByPosts(ctx context.Context, postIDs []string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
