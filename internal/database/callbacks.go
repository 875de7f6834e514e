package database

import (
	"time"

	"gorm.io/gorm"
)

const queryStartKey = "metrics:query_start_time"

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats interface{})
}

// RegisterMetricsCallbacks times every query, create, update and delete issued through db
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	cb := db.Callback()

	if err := cb.Query().Before("gorm:query").Register("metrics:query_before", markStart); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:query_after", recordAs(recorder, "select")); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("metrics:create_before", markStart); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:create_after", recordAs(recorder, "insert")); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:update_before", markStart); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:update_after", recordAs(recorder, "update")); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:delete_before", markStart); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("metrics:delete_after", recordAs(recorder, "delete"))
}

func markStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func recordAs(recorder MetricsRecorder, operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		recorder.RecordDBQuery(operation, tableOf(db), time.Since(start), db.Error)
	}
}

func tableOf(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	if db.Statement.Schema != nil && db.Statement.Schema.Table != "" {
		return db.Statement.Schema.Table
	}
	return "unknown"
}

// StartDBStatsCollector publishes connection pool stats every interval until the returned channel is closed
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder, interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					continue
				}
				recorder.UpdateDBStats(sqlDB.Stats())
			case <-done:
				return
			}
		}
	}()

	return done
}
