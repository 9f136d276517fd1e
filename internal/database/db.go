package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Config holds archive database configuration
type Config struct {
	Path  string // Path to SQLite database file
	Debug bool   // Log every statement
}

// DB is an open burst archive
type DB struct {
	db   *gorm.DB
	path string
}

// archive connection settings, applied once after opening
var archivePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000", // milliseconds
	"PRAGMA temp_store=memory",
}

// NewDB opens (creating if needed) the archive at config.Path using the pure
// Go SQLite driver and migrates the burst table.
func NewDB(config Config, log *log.Logger) (*DB, error) {
	if err := ensureDir(config.Path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        config.Path,
	}, &gorm.Config{
		Logger: newGormLogger(log, config.Debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", config.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	for _, pragma := range archivePragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to configure archive (%s): %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&Burst{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}

	if log != nil {
		log.Printf("Burst archive initialized: %s", config.Path)
	}
	return &DB{db: db, path: config.Path}, nil
}

// newGormLogger routes gorm output to l; statements are logged only in debug mode
func newGormLogger(l *log.Logger, debug bool) logger.Interface {
	if l == nil {
		return logger.Default.LogMode(logger.Silent)
	}
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(l, logger.Config{
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return nil
}

// GetDB returns the underlying GORM database instance
func (db *DB) GetDB() *gorm.DB {
	return db.db
}

// Path returns the archive file path
func (db *DB) Path() string { return db.path }

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health pings the archive connection
func (db *DB) Health() error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Stats returns connection pool statistics
func (db *DB) Stats() sql.DBStats {
	sqlDB, err := db.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}
