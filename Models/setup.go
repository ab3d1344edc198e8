package Models

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database described by cfg and runs migrations. The handle
// is returned to the caller; nothing in this package keeps connection state.
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for the mysql driver")
		}
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.DBDriver == "mysql" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite allows a single writer; one connection avoids lock errors.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Models with no dependencies
	if err := db.AutoMigrate(&Branch{}, &User{}); err != nil {
		return fmt.Errorf("migrate base models: %w", err)
	}

	// 2. Models with simple foreign keys
	if err := db.AutoMigrate(&Customer{}, &Inventory{}); err != nil {
		return fmt.Errorf("migrate customers: %w", err)
	}

	// 3. Ledger tables, which reference everything above
	if err := db.AutoMigrate(&Transaction{}, &Payment{}); err != nil {
		return fmt.Errorf("migrate ledger tables: %w", err)
	}

	return nil
}
