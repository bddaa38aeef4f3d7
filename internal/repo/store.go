package repo

import (
	"context"

	"gorm.io/gorm"

	"oneps/internal/domain"
)

type Store struct{ db *gorm.DB }

var _ domain.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *gorm.DB                 { return s.db }
func (s *Store) Users() domain.UserRepository { return NewUserRepo(s.db) }
func (s *Store) Posts() domain.PostRepository { return NewPostRepo(s.db) }
func (s *Store) Likes() domain.LikeRepository { return NewLikeRepo(s.db) }

func (s *Store) Tx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Models 需要迁移的全部表
func Models() []any { return []any{&domain.User{}, &domain.Post{}, &domain.Like{}} }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
