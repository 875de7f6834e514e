package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// Models returns every persisted domain model in migration order
func Models() []interface{} {
	return []interface{}{
		&domain.Site{},
		&domain.PhaseTemplate{},
		&domain.Phase{},
		&domain.Employee{},
		&domain.Task{},
		&domain.TaskAssignment{},
		&domain.ProgressUpdate{},
		&domain.Todo{},
		&domain.Message{},
		&domain.Notification{},
		&domain.Attachment{},
	}
}

// AutoMigrate runs GORM auto-migration for all domain models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// SafeAutoMigrate migrates one table at a time so a failure names the table
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	models := Models()

	logger.Info("Starting safe auto-migration", zap.Int("total_models", len(models)))

	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		table := "unknown"
		if err := stmt.Parse(m); err == nil {
			table = stmt.Schema.Table
		}
		existed := migrator.HasTable(m)

		if err := db.AutoMigrate(m); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", table),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}

		logger.Debug("Migrated table",
			zap.String("table", table),
			zap.Bool("was_existing", existed),
		)
	}

	logger.Info("Safe auto-migration completed successfully", zap.Int("tables_migrated", len(models)))
	return nil
}

// SafeAutoMigrateWithRetry runs SafeAutoMigrate with linear backoff
func SafeAutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = SafeAutoMigrate(db, logger)
		if err == nil {
			return nil
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
