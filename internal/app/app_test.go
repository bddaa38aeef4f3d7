package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"oneps/internal/core/config"
	"oneps/internal/testutil"
)

func buildConfig(migrate bool) *config.Config {
	return &config.Config{
		App:     config.App{Name: "1ps", Env: "test"},
		JWT:     config.JWT{Secret: "app-test-secret-0123456789abcdef", Issuer: "1ps", AccessTokenTTLMin: 60},
		Auth:    config.Auth{AdminEmail: "admin@admin", CookieName: "token"},
		Session: config.Session{Secret: "app-test-session-secret-0123"},
		DB:      config.DB{Driver: "sqlite", DSN: ":memory:", AutoMigrate: migrate, LogLevel: "silent"},
		Upload:  config.Upload{MaxBytes: 1 << 20},
	}
}

// captureDB 记下 Build 打开的连接
func captureDB(t *testing.T) **gorm.DB {
	t.Helper()
	var got *gorm.DB
	orig := openDB
	openDB = func(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
		db, err := orig(cfg, l)
		got = db
		return db, err
	}
	t.Cleanup(func() { openDB = orig })
	return &got
}

func TestBuild_ClosesDBOnFailure(t *testing.T) {
	got := captureDB(t)

	// 没有迁移就没有 users 表，提升管理员会失败
	_, cleanup, err := Build(context.Background(), buildConfig(false), zap.NewNop(), testutil.NewImages())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap admin")
	assert.Nil(t, cleanup)

	require.NotNil(t, *got)
	sqlDB, err := (*got).DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "connection must be closed after a failed build")
}

func TestBuild_CleanupClosesDB(t *testing.T) {
	got := captureDB(t)

	deps, cleanup, err := Build(context.Background(), buildConfig(true), zap.NewNop(), testutil.NewImages())
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	require.NoError(t, deps.Ready(context.Background()))

	cleanup()
	sqlDB, err := (*got).DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}
