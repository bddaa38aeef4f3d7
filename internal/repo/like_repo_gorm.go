package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oneps/internal/domain"
	"oneps/pkg/utils"
)

type LikeRepo struct{ db *gorm.DB }

var _ domain.LikeRepository = (*LikeRepo)(nil)

func NewLikeRepo(db *gorm.DB) *LikeRepo { return &LikeRepo{db: db} }

// Toggle 先删后插：删到了就是取消，否则插入（唯一索引兜底并发重复）。
// 计数只用数据库自身的加减表达式修改，全部在一个事务里完成。
func (r *LikeRepo) Toggle(ctx context.Context, userID, postID string) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, userID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&domain.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}

		res := tx.Where("user_id = ? AND ps_post_id = ?", userID, postID).Delete(&domain.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			if err := tx.Model(&domain.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
		} else {
			liked = true
			like := domain.Like{ID: utils.NewID(), UserID: userID, PsPostID: postID}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if res.Error != nil {
				return res.Error
			}
			// 插入被并发请求抢先时，对方已经 +1
			if res.RowsAffected > 0 {
				if err := tx.Model(&domain.Post{}).Where("id = ?", postID).
					UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
					return err
				}
			}
		}
		return tx.Model(&domain.Post{}).Select("likes").Where("id = ?", postID).Row().Scan(&count)
	})
	if err != nil {
		return false, 0, translate(err)
	}
	return liked, count, nil
}

// LikedPostIDs 返回 postIDs 中被该用户点过赞的集合
func (r *LikeRepo) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND ps_post_id IN ?", userID, postIDs).
		Pluck("ps_post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *LikeRepo) PostIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("ps_post_id", &ids).Error
	return ids, err
}

func (r *LikeRepo) FindByID(ctx context.Context, id string) (*domain.Like, error) {
	var l domain.Like
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *LikeRepo) List(ctx context.Context, offset, limit int) ([]domain.LikeRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Like{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.LikeRow
	err := r.db.WithContext(ctx).Table("likes").
		Select("likes.*, users.name AS user_name, posts.post_text AS post_text").
		Joins("LEFT JOIN users ON users.id = likes.user_id").
		Joins("LEFT JOIN posts ON posts.id = likes.ps_post_id").
		Order("likes.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

func (r *LikeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LikeRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Like{}).Error
}

func (r *LikeRepo) DeleteByPosts(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("ps_post_id IN ?", postIDs).Delete(&domain.Like{}).Error
}

func (r *LikeRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Like{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *LikeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Like{}).Count(&n).Error
	return n, err
}
