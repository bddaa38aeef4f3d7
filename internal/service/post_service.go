package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"oneps/internal/core/apperr"
	"oneps/internal/core/cache"
	"oneps/internal/domain"
	"oneps/pkg/utils"
)

const (
	feedKey        = "feed:v1"
	feedTTL        = 30 * time.Second
	feedLimit      = 100
	MaxCaptionLen  = 1000
	DefaultMaxSize = 10 << 20
)

var (
	allowedMIME = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true}
	allowedExt  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
)

type PostService struct {
	store    domain.Store
	images   domain.ImageStore
	cache    *cache.Cache
	maxBytes int64
	log      *zap.Logger
}

func NewPostService(store domain.Store, images domain.ImageStore, c *cache.Cache, maxBytes int64, l *zap.Logger) *PostService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSize
	}
	return &PostService{store: store, images: images, cache: c, maxBytes: maxBytes, log: l}
}

func (s *PostService) MaxBytes() int64 { return s.maxBytes }

// Upload 一张待上传的图片
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Actor 执行写操作的人；Admin 只由管理端设置
type Actor struct {
	UserID string
	Admin  bool
}

type FeedItem struct {
	domain.Post
	LikedByMe bool `json:"likedByMe"`
}

func (s *PostService) checkUpload(up Upload) error {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	ct := strings.ToLower(strings.TrimSpace(strings.Split(up.ContentType, ";")[0]))
	if !allowedMIME[ct] || !allowedExt[ext] {
		return apperr.Validation("imageFile", "only jpeg, jpg, png and gif images are allowed")
	}
	if up.Size <= 0 {
		return apperr.Validation("imageFile", "image file is required")
	}
	if up.Size > s.maxBytes {
		return apperr.Validation("imageFile", "image exceeds the size limit")
	}
	return nil
}

func checkCaption(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("postText", "caption is required")
	}
	if utf8.RuneCountInString(text) > MaxCaptionLen {
		return "", apperr.Validation("postText", "caption is too long")
	}
	return text, nil
}

// Create 先存图片再校验文字；存图之后的任何失败都会删掉已存的图片
func (s *PostService) Create(ctx context.Context, userID string, up Upload, caption string) (*domain.Post, error) {
	if err := s.checkUpload(up); err != nil {
		uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		uploads.WithLabelValues("rejected").Inc()
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperr.Unauthenticated("account no longer exists")
		}
		return nil, apperr.Internal("", err)
	}
	img, err := s.images.Put(ctx, up.ContentType, up.Body, up.Size)
	if err != nil {
		uploads.WithLabelValues("error").Inc()
		return nil, apperr.Internal("image upload failed", err)
	}
	rollback := func(cause error) error {
		if derr := s.images.Delete(ctx, img.PublicID); derr != nil {
			s.log.Warn("upload rollback failed", zap.String("public_id", img.PublicID), zap.Error(derr))
		}
		uploads.WithLabelValues("rolled_back").Inc()
		return cause
	}

	text, err := checkCaption(caption)
	if err != nil {
		return nil, rollback(err)
	}
	p := &domain.Post{
		ID:       utils.NewID(),
		UserID:   userID,
		ImageURL: img.URL,
		PublicID: img.PublicID,
		PostText: text,
	}
	if err := s.store.Posts().Create(ctx, p); err != nil {
		return nil, rollback(classify(err, "post"))
	}
	uploads.WithLabelValues("ok").Inc()
	s.log.Info("post created", zap.String("post_id", p.ID), zap.String("user_id", userID))
	invalidateFeed(ctx, s.cache, s.log)
	return p, nil
}

// Feed 最新在前；帖子列表走缓存，likedByMe 按调用者单独计算
func (s *PostService) Feed(ctx context.Context, viewerID string) ([]FeedItem, error) {
	list, err := cache.LoadJSON(ctx, s.cache, feedKey, feedTTL, func(ctx context.Context) ([]domain.Post, error) {
		return s.store.Posts().Feed(ctx, feedLimit)
	})
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	liked := map[string]bool{}
	if viewerID != "" {
		if liked, err = s.store.Likes().LikedPostIDs(ctx, viewerID, postIDs(list)); err != nil {
			return nil, apperr.Internal("", err)
		}
	}
	items := make([]FeedItem, 0, len(list))
	for _, p := range list {
		items = append(items, FeedItem{Post: p, LikedByMe: liked[p.ID]})
	}
	return items, nil
}

// LikedPosts 调用者点过赞的帖子，按点赞时间倒序
func (s *PostService) LikedPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	ids, err := s.store.Likes().PostIDsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	posts, err := s.store.Posts().ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	byID := make(map[string]domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]domain.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	p, err := s.store.Posts().FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "post")
	}
	return p, nil
}

func (s *PostService) owned(ctx context.Context, store domain.Store, actor Actor, id string) (*domain.Post, error) {
	p, err := store.Posts().FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "post")
	}
	if !actor.Admin && p.UserID != actor.UserID {
		return nil, apperr.Forbidden("you can only change your own posts")
	}
	return p, nil
}

func (s *PostService) UpdateCaption(ctx context.Context, actor Actor, id, text string) (*domain.Post, error) {
	p, err := s.owned(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	if text, err = checkCaption(text); err != nil {
		return nil, err
	}
	if err := s.store.Posts().UpdateText(ctx, id, text); err != nil {
		return nil, classify(err, "post")
	}
	p.PostText = text
	invalidateFeed(ctx, s.cache, s.log)
	return p, nil
}

// Delete 帖子和它的点赞在一个事务里删除，提交后释放图片
func (s *PostService) Delete(ctx context.Context, actor Actor, id string) error {
	var p *domain.Post
	err := s.store.Tx(ctx, func(tx domain.Store) error {
		var err error
		if p, err = s.owned(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := tx.Likes().DeleteByPosts(ctx, []string{id}); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, id)
	})
	if err != nil {
		return classify(err, "post")
	}
	s.log.Info("post deleted", zap.String("post_id", id), zap.String("by", actor.UserID), zap.Bool("admin", actor.Admin))
	invalidateFeed(ctx, s.cache, s.log)
	releaseImages(ctx, s.images, s.log, []domain.Post{*p})
	return nil
}

func (s *PostService) List(ctx context.Context, offset, limit int) ([]domain.PostWithAuthor, int64, error) {
	rows, total, err := s.store.Posts().ListWithAuthors(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("", err)
	}
	return rows, total, nil
}

func invalidateFeed(ctx context.Context, c *cache.Cache, l *zap.Logger) {
	if err := c.Del(ctx, feedKey); err != nil {
		l.Warn("feed cache invalidate failed", zap.Error(err))
	}
}
