package config

import (
	"fmt"
	"strings"
	"time"

	"hospital-meal-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the service owns, in migration order.
var Models = []interface{}{
	&models.User{},
	&models.MenuItem{},
	&models.Favorite{},
	&models.Order{},
	&models.OrderItem{},
	&models.OrderStatusHistory{},
	&models.DoctorQuotaClaim{},
}

// OpenDB opens the SQLite store and migrates all models.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(withPragmas(path)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		// Timestamps are stored as text; one zone keeps range queries ordered.
		NowFunc: func() time.Time { return time.Now().UTC() },
		// Orders outlive the accounts and dishes they reference.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection keeps in-process writes ordered.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
