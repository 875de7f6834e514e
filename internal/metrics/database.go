package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats updates database connection pool metrics
func (m *Metrics) UpdateDBStats(statsInterface interface{}) {
	m.safeExecute("UpdateDBStats", func() {
		stats, ok := statsInterface.(sql.DBStats)
		if !ok {
			return
		}
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))

		// sql.DBStats wait values are cumulative
		m.statsMu.Lock()
		defer m.statsMu.Unlock()
		if d := stats.WaitCount - m.lastWaitCount; d > 0 {
			m.DBConnectionWaitTotal.Add(float64(d))
		}
		if d := stats.WaitDuration.Seconds() - m.lastWaitDuration; d > 0 {
			m.DBConnectionWaitDuration.Add(d)
		}
		m.lastWaitCount = stats.WaitCount
		m.lastWaitDuration = stats.WaitDuration.Seconds()
	})
}

// RecordDBQuery records database query metrics
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		operation = strings.ToLower(operation)
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())

		if err != nil {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}
