package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		user, pass string
		want       string
	}{
		{
			name: "jdbc style url",
			in:   "jdbc:mysql://root:pw@localhost:3306/app?useSSL=false&serverTimezone=UTC&useUnicode=true",
			want: "root:pw@tcp(localhost:3306)/app?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "override user",
			in:   "mysql://root:pw@db:3306/app?characterEncoding=utf8",
			user: "ps",
			want: "ps:pw@tcp(db:3306)/app?charset=utf8&parseTime=true",
		},
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(localhost:3306)/app",
			want: "root:pw@tcp(localhost:3306)/app",
		},
		{name: "empty", in: "  ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(localhost:3306)/app", maskDSN("root:pw@tcp(localhost:3306)/app"))
	assert.Equal(t, "file::memory:", maskDSN("file::memory:"))
}

func TestNewGorm_SQLiteMemory(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGorm_SQLLogGoesToZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: ":memory:", LogLevel: "info", Log: zap.New(core)})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	entries := logs.FilterMessageSnippet("SELECT 1").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "sql", entries[0].LoggerName)
}
