package repo

import (
	"context"

	"gorm.io/gorm"

	"oneps/internal/domain"
)

type PostRepo struct{ db *gorm.DB }

var _ domain.PostRepository = (*PostRepo)(nil)

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

// Create 作者必须仍然存在，和插入放在同一事务里
func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, p.UserID); err != nil {
			return err
		}
		return tx.Create(p).Error
	}))
}

func (r *PostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var p domain.Post
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PostRepo) Feed(ctx context.Context, limit int) ([]domain.Post, error) {
	var ps []domain.Post
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&ps).Error
	return ps, err
}

func (r *PostRepo) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	var ps []domain.Post
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&ps).Error
	return ps, err
}

func (r *PostRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ps []domain.Post
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at DESC").Find(&ps).Error
	return ps, err
}

func (r *PostRepo) ListWithAuthors(ctx context.Context, offset, limit int) ([]domain.PostWithAuthor, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.PostWithAuthor
	err := r.db.WithContext(ctx).Table("posts").
		Select("posts.*, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = posts.user_id").
		Order("posts.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

func (r *PostRepo) UpdateText(ctx context.Context, id, text string) error {
	res := r.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).Update("post_text", text)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByUser 删除并返回该用户的全部帖子（调用方据此释放图片）
func (r *PostRepo) DeleteByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	var ps []domain.Post
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Find(&ps).Error; err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, nil
	}
	if err := db.Where("user_id = ?", userID).Delete(&domain.Post{}).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

// RecountLikes 用 likes 表重新计算冗余计数
func (r *PostRepo) RecountLikes(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id IN ?", postIDs).
		UpdateColumn("likes", gorm.Expr("(SELECT COUNT(*) FROM likes WHERE likes.ps_post_id = posts.id)")).Error
}

func (r *PostRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).Count(&n).Error
	return n, err
}
