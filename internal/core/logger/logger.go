// Package logger builds the process zap logger and bridges gin, net/http and
// the standard library log package into it.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"oneps/internal/core/config"
)

// FromConfig stdout 总是输出；log.file 非空时再写一份按大小切割的文件。
// 返回的 cleanup 刷盘并关闭文件
func FromConfig(c config.Log) (*zap.Logger, func()) {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(c.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(c.JSON, true), zapcore.Lock(os.Stdout), lvl),
	}
	var rotator *lumberjack.Logger
	if c.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    max(1, c.MaxSizeMB),
			MaxBackups: max(0, c.MaxBackups),
			MaxAge:     max(0, c.MaxAgeDays),
			Compress:   c.Compress,
		}
		// 文件里不要颜色码
		cores = append(cores, zapcore.NewCore(encoder(c.JSON, false), zapcore.AddSync(rotator), lvl))
	}

	// 同一条消息每秒前 100 条全记，之后每 100 条记 1 条
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !c.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)

	return l, func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
}

func encoder(json, color bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

type lineWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w lineWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 每次 Write 记一条日志，给 gin.DefaultWriter 用
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return lineWriter{l: l, level: level}
}

// ToStdLogger 给 http.Server.ErrorLog 用
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l.Named("http"), level)
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
