// Package app wires configuration into the shared dependencies of the
// user-facing and admin binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"oneps/internal/core/auth"
	"oneps/internal/core/cache"
	"oneps/internal/core/config"
	"oneps/internal/core/database"
	"oneps/internal/core/storage"
	"oneps/internal/domain"
	"oneps/internal/repo"
	"oneps/internal/service"
	"oneps/internal/transport/http/flash"
	mdw "oneps/internal/transport/http/middleware"
	"oneps/internal/transport/http/router"
)

// openDB 测试里替换，用来观察失败路径是否关闭了连接
var openDB = OpenDB

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
}

func NewJWTer(c config.JWT) *auth.JWTer {
	return &auth.JWTer{
		Secret: []byte(c.Secret),
		Issuer: c.Issuer,
		TTL:    time.Duration(c.AccessTokenTTLMin) * time.Minute,
	}
}

func NewTokenCookie(cfg *config.Config) mdw.TokenCookie {
	return mdw.TokenCookie{
		Name:   cfg.Auth.CookieName,
		MaxAge: cfg.JWT.AccessTokenTTLMin * 60,
		Secure: cfg.App.Prod(),
		JWT:    NewJWTer(cfg.JWT),
	}
}

// Build 打开数据库、迁移、提升管理员，并组装 router.Deps。
// images 为 nil 时按配置创建 S3 客户端
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger, images domain.ImageStore) (router.Deps, func(), error) {
	db, err := openDB(cfg, l)
	if err != nil {
		return router.Deps{}, nil, fmt.Errorf("open db: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			closeDB()
			return router.Deps{}, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	if images == nil {
		client, err := storage.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			closeDB()
			return router.Deps{}, nil, err
		}
		images = storage.NewS3Store(client, cfg.Storage.Bucket, cfg.Storage.Folder, cfg.Storage.PublicURL)
	}

	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if rc == nil {
		l.Info("redis disabled, feed is not cached")
	} else if err := rc.Ping(ctx); err != nil {
		// 缓存不可用不阻止启动
		l.Warn("redis ping failed", zap.Error(err))
	}
	// 之后的失败路径和正常退出都要释放连接
	cleanup := func() {
		_ = rc.Close()
		closeDB()
	}

	store := repo.NewStore(db)
	users := service.NewUserService(store, images, rc, cfg.Auth.AdminEmail, l)
	if err := users.BootstrapAdmin(ctx); err != nil {
		cleanup()
		return router.Deps{}, nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	deps := router.Deps{
		Log:            l,
		DB:             db,
		Dev:            cfg.App.Dev(),
		Cookie:         NewTokenCookie(cfg),
		Flash:          flash.New(cfg.Session.Secret, cfg.App.Prod()),
		Users:          users,
		Posts:          service.NewPostService(store, images, rc, cfg.Upload.MaxBytes, l),
		Likes:          service.NewLikeService(store, rc, l),
		MaxUploadBytes: cfg.Upload.MaxBytes,
		RequestTimeout: time.Duration(cfg.App.HTTP.WriteTimeoutSec) * time.Second / 2,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("db: %w", err)
			}
			if err := rc.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
	}
	return deps, cleanup, nil
}
