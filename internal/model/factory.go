package model

import (
	"closet/internal/config"
	"closet/internal/model/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

const defaultSQLitePath = "datas/closet.db"

// dialectorBuilder 把配置翻译成具体驱动的 gorm.Dialector
type dialectorBuilder func(cfg *config.Config) (gorm.Dialector, error)

var dialectors = map[string]dialectorBuilder{
	DBTypeMySQL:    mysqlDialector,
	DBTypeSQLite:   sqliteDialector,
	DBTypePostgres: postgresDialector,
}

// poolSettings 连接池参数
type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	slowQuery   time.Duration
}

func poolSettingsFrom(cfg *config.Config) poolSettings {
	p := poolSettings{
		maxOpen:     cfg.DBMaxOpenConns,
		maxIdle:     cfg.DBMaxIdleConns,
		maxLifetime: time.Duration(cfg.DBConnMaxLifetimeMins) * time.Minute,
		slowQuery:   time.Duration(cfg.DBSlowQueryMillis) * time.Millisecond,
	}
	if p.maxOpen <= 0 {
		p.maxOpen = 20
	}
	if p.maxIdle <= 0 || p.maxIdle > p.maxOpen {
		p.maxIdle = min(5, p.maxOpen)
	}
	if p.maxLifetime <= 0 {
		p.maxLifetime = time.Hour
	}
	if p.slowQuery <= 0 {
		p.slowQuery = 500 * time.Millisecond
	}
	return p
}

// InitRepository 按 DBType 打开数据库、迁移表结构并返回仓库，DBType 为空时使用 SQLite。
func InitRepository(cfg *config.Config) (Repository, error) {
	dbType := strings.ToLower(strings.TrimSpace(cfg.DBType))
	if dbType == "" {
		dbType = DBTypeSQLite
		cfg.DBType = dbType
	}

	build, ok := dialectors[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
	dialector, err := build(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openGormDB(dialector, poolSettingsFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dbType, err)
	}
	if err := sql.AutoMigrate(db); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return sql.NewGormRepository(db), nil
}

// NewSQLiteRepository 打开指定路径的 SQLite 数据库并完成迁移，供测试和单机部署使用。
func NewSQLiteRepository(path string) (Repository, error) {
	return InitRepository(&config.Config{DBType: DBTypeSQLite, DBPath: path})
}

func mysqlDialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.DSNURL
	if dsn == "" {
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("mysql: DBAddr or DSN_URL is required")
		}
		// 时间统一按 UTC 存取，按天/按月分组在服务层换算时区
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
	}
	return mysql.Open(dsn), nil
}

func postgresDialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.DSNURL
	if dsn == "" {
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("postgres: DBAddr or DSN_URL is required")
		}
		port := cfg.DBPort
		if port == "" || port == "3306" {
			port = "5432"
		}
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, port)
	}
	return postgres.Open(dsn), nil
}

func sqliteDialector(cfg *config.Config) (gorm.Dialector, error) {
	filePath := cfg.DBPath
	if filePath == "" {
		filePath = defaultSQLitePath
	}

	// SQLite 只会创建 .db 文件，目录需要提前建好
	if dir := filepath.Dir(filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	return sqlite.Open(sqliteDSN(filePath)), nil
}

// sqliteDSN 追加 WAL 与忙等待参数；已带查询串的路径原样使用。
func sqliteDSN(filePath string) string {
	if strings.Contains(filePath, "?") {
		return filePath
	}
	return filePath + "?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
}

func openGormDB(dialector gorm.Dialector, pool poolSettings) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   newGormLogger(pool.slowQuery),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true, // 唯一键冲突映射为 gorm.ErrDuplicatedKey
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)

	return db, nil
}

func closeQuietly(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
