package database

import (
	"fmt"

	"polling-service/internal/model"
	"polling-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitRegistry opens the main database that holds the shared tenant registry
// and migrates its single table. Tenant partitions are opened lazily by the
// Router, never here.
func InitRegistry(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg.DB.GetDSN(), &cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect registry database: %w", err)
	}

	if err := db.AutoMigrate(&model.Tenant{}); err != nil {
		return nil, fmt.Errorf("migrate registry database: %w", err)
	}

	return db, nil
}

func open(dsn string, cfg *config.DBConfig) (*gorm.DB, error) {
	logLevel := cfg.LogLevel
	if logLevel == 0 {
		logLevel = gormlogger.Warn
	}

	// PreferSimpleProtocol avoids "prepared statement already exists" errors
	// behind connection poolers.
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}
