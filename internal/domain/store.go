package domain

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrUserGone 令牌仍有效但账号已删除
	ErrUserGone = errors.New("user no longer exists")
)

// Store 聚合三个仓储；Tx 内拿到的是绑定同一事务的 Store
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Likes() LikeRepository
	Tx(ctx context.Context, fn func(tx Store) error) error
}

// StoredImage 外部图床返回的地址与可删除的 public id
type StoredImage struct {
	URL      string
	PublicID string
}

type ImageStore interface {
	Put(ctx context.Context, contentType string, body io.Reader, size int64) (StoredImage, error)
	Delete(ctx context.Context, publicID string) error
}
