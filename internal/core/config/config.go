package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string // development / production
	HTTP  HTTP
	Admin AdminHTTP
}

// Dev 开发环境才向客户端暴露错误细节
func (a App) Dev() bool { return a.Env == "development" }

// Prod cookie 只在生产环境加 Secure
func (a App) Prod() bool { return a.Env == "production" }

type Log struct {
	Level      string
	JSON       bool
	File       string // 为空则只写 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Auth struct {
	AdminEmail string
	CookieName string
}

type Session struct {
	Secret string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Storage struct {
	Bucket          string
	Endpoint        string // R2 / MinIO 等兼容端点，空则走 AWS 默认
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	PublicURL       string // 形如 https://cdn.example.com/%s
	Folder          string
}

type Upload struct {
	MaxBytes int64
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Auth    Auth
	Session Session
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Storage Storage
	Upload  Upload
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "1ps")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 4000)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 4001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxSizeMB", 100)
	v.SetDefault("log.maxBackups", 7)
	v.SetDefault("log.maxAgeDays", 30)

	// 无默认值的键也要注册，否则 Unmarshal 看不到 APP_ 环境变量
	v.SetDefault("jwt.secret", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accessKeyID", "")
	v.SetDefault("storage.accessKeySecret", "")
	v.SetDefault("storage.publicURL", "")
	v.SetDefault("log.file", "")

	v.SetDefault("jwt.issuer", "1ps")
	v.SetDefault("jwt.accessTokenTTLMin", 60)
	v.SetDefault("auth.adminEmail", "admin@admin")
	v.SetDefault("auth.cookieName", "token")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.folder", "1PS_uploads")
	v.SetDefault("upload.maxBytes", 10<<20)
}

// Load 读取 yaml，APP_ 前缀环境变量覆盖（APP_JWT_SECRET、APP_DB_DSN ...）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("config: jwt.secret must be at least 16 characters")
	}
	if c.Session.Secret == "" {
		c.Session.Secret = c.JWT.Secret
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		return fmt.Errorf("config: jwt.accessTokenTTLMin must be positive")
	}
	return nil
}
