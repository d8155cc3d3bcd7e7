package db

import (
	"fmt" // Error wrapping

	"finance_tracker/internal/config" // Driver and DSN
	"finance_tracker/internal/domain" // Importing domain models

	"github.com/glebarez/sqlite"     // Pure Go SQLite driver for GORM
	"github.com/sirupsen/logrus"     // Logging library
	"gorm.io/driver/mysql"           // MySQL driver for GORM
	"gorm.io/driver/postgres"        // PostgreSQL driver for GORM
	"gorm.io/gorm"                   // GORM ORM library
	gormlogger "gorm.io/gorm/logger" // GORM logger levels
)

// Models lists every table of the schema, parents first
var Models = []any{
	&domain.User{},
	&domain.Category{},
	&domain.Wallet{},
	&domain.Transaction{},
	&domain.Group{},
	&domain.GroupMember{},
	&domain.GroupTransaction{},
	&domain.GroupSharing{},
}

// Open connects to the configured database
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector // Driver specific dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	level := gormlogger.Warn // Only slow queries and errors in production
	if !cfg.IsProd {
		level = gormlogger.Info
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true, // Unique violations surface as gorm.ErrDuplicatedKey
	})
}

// Migrate creates tables, missing foreign keys, constraints, columns and indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.WithField("tables", len(Models)).Info("Migration completed.") // Log successful migration
	return nil
}
