package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"oneps/internal/app"
	"oneps/internal/core/config"
	"oneps/internal/core/logger"
	"oneps/internal/core/server"
	"oneps/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	log = log.With(zap.String("surface", "admin"))
	if !cfg.App.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := app.Build(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer closeDeps()

	// 路由（后台端）
	r := router.NewAdminEngine(deps)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 30*time.Second, 60*time.Second)
	if el, err := logger.ToStdLogger(log, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = el
	}

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("1ps admin starting",
		zap.String("open", baseURL+"/admin"),
		zap.String("login", baseURL+router.AdminLoginPath),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Fatal("1ps admin FAILED", zap.Error(err))
	}
	log.Info("1ps admin stopped gracefully")
}
