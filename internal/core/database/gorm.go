// Package database opens the GORM handle for the configured driver.
package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver             string // postgres | mysql | sqlite
	DSN                string
	Username           string // 仅 mysql:// 形式的 DSN 使用
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string        // silent | error | warn | info
	SlowQuery          time.Duration // 0 则 200ms
	Log                *zap.Logger   // nil 则丢弃 SQL 日志
}

func NewGorm(o Opts) (*gorm.DB, error) {
	dial, err := dialector(o)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:                 sqlLogger(o),
		SkipDefaultTransaction: true, // 只在 Store.Tx 里开事务
		PrepareStmt:            o.Driver != "sqlite",
		CreateBatchSize:        200,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open %s: %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// :memory: 每个连接都是一个独立的库
	if o.Driver == "sqlite" && strings.Contains(o.DSN, ":memory:") {
		o.MaxOpenConns, o.MaxIdleConns = 1, 1
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	return db, nil
}

func dialector(o Opts) (gorm.Dialector, error) {
	switch o.Driver {
	case "postgres":
		return postgres.Open(o.DSN), nil
	case "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		if o.Log != nil {
			o.Log.Info("mysql dsn", zap.String("dsn", maskDSN(dsn)))
		}
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(o.DSN), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

// zapWriter 实现 gorm logger.Writer
type zapWriter struct{ s *zap.SugaredLogger }

func (w zapWriter) Printf(format string, args ...interface{}) { w.s.Infof(format, args...) }

func sqlLogger(o Opts) logger.Interface {
	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	l := o.Log
	if l == nil {
		l = zap.NewNop()
	}
	slow := o.SlowQuery
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return logger.New(zapWriter{l.Named("sql").Sugar()}, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// maskDSN 打日志前把 user:pass@ 里的密码替换掉
func maskDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		if colon := strings.Index(dsn[:at], ":"); colon > 0 {
			return dsn[:colon+1] + "****" + dsn[at:]
		}
	}
	return dsn
}

// jdbcParams JDBC 参数名 → go-sql-driver 参数名
var jdbcParams = map[string]string{
	"characterEncoding": "charset",
	"serverTimezone":    "loc",
}

// jdbcDropped go-sql-driver 不认识的参数
var jdbcDropped = []string{"useUnicode", "zeroDateTimeBehavior"}

// normalizeMySQLDSN 把 mysql:// 或 jdbc:mysql:// 的 URL 改写成 user:pass@tcp(host)/db?...，
// 原生 DSN 原样返回
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return strings.TrimSpace(input)
	}
	u, err := url.Parse(in)
	if err != nil {
		return in
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	q := u.Query()
	if v := q.Get("user"); v != "" {
		user = v
	}
	if v := q.Get("password"); v != "" {
		pass = v
	}
	q.Del("user")
	q.Del("password")
	if userOverride != "" {
		user = userOverride
	}
	if passOverride != "" {
		pass = passOverride
	}

	for from, to := range jdbcParams {
		if v := q.Get(from); v != "" && q.Get(to) == "" {
			q.Set(to, v)
		}
		q.Del(from)
	}
	for _, k := range jdbcDropped {
		q.Del(k)
	}
	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		switch v {
		case "true", "1":
			q.Set("tls", "true")
		case "skip-verify", "preferred":
			q.Set("tls", v)
		default:
			q.Set("tls", "false")
		}
		q.Del("useSSL")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}

	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	if cred != "" {
		cred += "@"
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", cred, u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		dsn += "?" + enc
	}
	return dsn
}
