package service

import (
	"context"

	"go.uber.org/zap"

	"oneps/internal/domain"
)

// releaseImages 删除数据库行提交之后调用；失败只记日志
func releaseImages(ctx context.Context, store domain.ImageStore, l *zap.Logger, posts []domain.Post) {
	for _, p := range posts {
		if err := store.Delete(ctx, p.PublicID); err != nil {
			imageReleases.WithLabelValues("error").Inc()
			l.Warn("image release failed", zap.String("post_id", p.ID), zap.String("public_id", p.PublicID), zap.Error(err))
			continue
		}
		imageReleases.WithLabelValues("ok").Inc()
		l.Info("image released", zap.String("post_id", p.ID), zap.String("public_id", p.PublicID))
	}
}

func postIDs(posts []domain.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
