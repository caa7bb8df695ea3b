package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/backstage/services/events/config"
	"example.com/backstage/services/events/internal/metrics"
	"example.com/backstage/services/events/internal/models"
)

// Connect establishes a connection to the database
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Debug {
		logLevel = logger.Info
	} else {
		logLevel = logger.Error
	}

	gormLogger := logger.New(
		&logAdapter{},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	registerMetricsHooks(db)

	return db, nil
}

// AutoMigrate ensures the schema for the events tables is up to date
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Event{}, &models.EventTransition{})
}

// logAdapter adapts the GORM logger to zerolog
type logAdapter struct{}

func (l *logAdapter) Printf(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

// registerMetricsHooks registers GORM callbacks that observe query durations
func registerMetricsHooks(db *gorm.DB) {
	start := func(db *gorm.DB) {
		db.InstanceSet("start_time", time.Now())
	}
	observe := func(operation string) func(db *gorm.DB) {
		return func(db *gorm.DB) {
			if v, ok := db.InstanceGet("start_time"); ok {
				metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(v.(time.Time)).Seconds())
			}
		}
	}

	db.Callback().Create().Before("gorm:create").Register("duration:create", start)
	db.Callback().Create().After("gorm:create").Register("metrics:create", observe("insert"))
	db.Callback().Query().Before("gorm:query").Register("duration:query", start)
	db.Callback().Query().After("gorm:query").Register("metrics:query", observe("select"))
	db.Callback().Update().Before("gorm:update").Register("duration:update", start)
	db.Callback().Update().After("gorm:update").Register("metrics:update", observe("update"))
	db.Callback().Delete().Before("gorm:delete").Register("duration:delete", start)
	db.Callback().Delete().After("gorm:delete").Register("metrics:delete", observe("delete"))
}
