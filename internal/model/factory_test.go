package model

import (
	"closet/internal/config"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestInitRepositoryCreatesSQLiteDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "closet.db")
	cfg := &config.Config{DBPath: path}

	repo, err := InitRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	assert.Equal(t, DBTypeSQLite, cfg.DBType)
	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.NoError(t, repo.Ping(context.Background()))

	count, err := repo.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInitRepositoryRejectsUnknownDriver(t *testing.T) {
	_, err := InitRepository(&config.Config{DBType: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestNetworkDriversNeedAddress(t *testing.T) {
	for _, dbType := range []string{DBTypeMySQL, DBTypePostgres} {
		_, err := InitRepository(&config.Config{DBType: dbType})
		require.Error(t, err, dbType)
		assert.Contains(t, err.Error(), "DBAddr or DSN_URL is required")
	}
}

func TestClosedRepositoryFailsPing(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "closet.db"))
	require.NoError(t, err)

	require.NoError(t, repo.Close())
	assert.Error(t, repo.Ping(context.Background()))
}

func TestPoolSettingsDefaults(t *testing.T) {
	p := poolSettingsFrom(&config.Config{})
	assert.Equal(t, 20, p.maxOpen)
	assert.Equal(t, 5, p.maxIdle)
	assert.Equal(t, time.Hour, p.maxLifetime)
	assert.Equal(t, 500*time.Millisecond, p.slowQuery)

	p = poolSettingsFrom(&config.Config{DBMaxOpenConns: 2, DBMaxIdleConns: 8, DBSlowQueryMillis: 50})
	assert.Equal(t, 2, p.maxOpen)
	assert.Equal(t, 2, p.maxIdle)
	assert.Equal(t, 50*time.Millisecond, p.slowQuery)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", sqliteDSN("a.db"))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN("file::memory:?cache=shared"))
}

func TestGormLoggerLogModeClones(t *testing.T) {
	base := newGormLogger(time.Second)
	silent := base.LogMode(logger.Silent)

	assert.Equal(t, logger.Warn, base.(*gormLogger).level)
	assert.Equal(t, logger.Silent, silent.(*gormLogger).level)
	assert.Equal(t, time.Second, silent.(*gormLogger).slowQuery)
}
