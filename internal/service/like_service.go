package service

import (
	"context"

	"go.uber.org/zap"

	"oneps/internal/core/apperr"
	"oneps/internal/core/cache"
	"oneps/internal/domain"
)

type LikeService struct {
	store domain.Store
	cache *cache.Cache
	log   *zap.Logger
}

func NewLikeService(store domain.Store, c *cache.Cache, l *zap.Logger) *LikeService {
	return &LikeService{store: store, cache: c, log: l}
}

type ToggleResult struct {
	IsLiked  bool  `json:"isLiked"`
	NewCount int64 `json:"newLikesCount"`
}

// Toggle 点赞/取消点赞，计数与 likes 表在同一事务里保持一致
func (s *LikeService) Toggle(ctx context.Context, userID, postID string) (ToggleResult, error) {
	liked, count, err := s.store.Likes().Toggle(ctx, userID, postID)
	if err != nil {
		return ToggleResult{}, classify(err, "post")
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	likeToggles.WithLabelValues(state).Inc()
	s.log.Debug("like toggled",
		zap.String("user_id", userID),
		zap.String("post_id", postID),
		zap.Bool("liked", liked),
		zap.Int64("count", count),
	)
	invalidateFeed(ctx, s.cache, s.log)
	return ToggleResult{IsLiked: liked, NewCount: count}, nil
}

func (s *LikeService) List(ctx context.Context, offset, limit int) ([]domain.LikeRow, int64, error) {
	rows, total, err := s.store.Likes().List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return rows, total, nil
}

// Delete 管理端删除单条点赞并重算该帖子的计数
func (s *LikeService) Delete(ctx context.Context, id string) error {
	err := s.store.Tx(ctx, func(tx domain.Store) error {
		l, err := tx.Likes().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Likes().Delete(ctx, id); err != nil {
			return err
		}
		return tx.Posts().RecountLikes(ctx, []string{l.PsPostID})
	})
	if err != nil {
		return classify(err, "like")
	}
	invalidateFeed(ctx, s.cache, s.log)
	return nil
}
