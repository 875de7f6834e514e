package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "site_service"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen        prometheus.Gauge
	DBConnectionsInUse       prometheus.Gauge
	DBConnectionsIdle        prometheus.Gauge
	DBConnectionsMax         prometheus.Gauge
	DBConnectionWaitTotal    prometheus.Counter
	DBConnectionWaitDuration prometheus.Counter
	DBQueryDuration          *prometheus.HistogramVec
	DBQueryErrors            *prometheus.CounterVec

	// External API metrics (S3, notification webhook)
	ExternalAPIRequestDuration *prometheus.HistogramVec
	ExternalAPIRequestsTotal   *prometheus.CounterVec
	ExternalAPIErrors          *prometheus.CounterVec

	// Workflow metrics
	WorkflowTransitionsTotal *prometheus.CounterVec
	WorkflowRejectionsTotal  *prometheus.CounterVec
	NotificationsTotal       *prometheus.CounterVec
	NotificationFailures     *prometheus.CounterVec
	EventsPublishedTotal     *prometheus.CounterVec

	// Business gauges refreshed by BusinessMetricsCollector
	SitesTotal            *prometheus.GaugeVec
	TasksTotal            *prometheus.GaugeVec
	PendingApprovalsTotal *prometheus.GaugeVec
	ChatConnections       prometheus.Gauge

	// Logger for error reporting
	logger *zap.Logger

	// last pool counters seen, so cumulative sql.DBStats values become deltas
	statsMu          sync.Mutex
	lastWaitCount    int64
	lastWaitDuration float64
}

// New creates and registers all metrics with the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		DBConnectionsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Current number of open database connections",
		}),
		DBConnectionsInUse: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Current number of in-use database connections",
		}),
		DBConnectionsIdle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Current number of idle database connections",
		}),
		DBConnectionsMax: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_max",
			Help:      "Maximum number of open database connections configured",
		}),
		DBConnectionWaitTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_connection_wait_total",
			Help:      "Total number of times waited for a database connection",
		}),
		DBConnectionWaitDuration: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_connection_wait_duration_seconds_total",
			Help:      "Total duration waited for database connections in seconds",
		}),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation", "table"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_query_errors_total",
				Help:      "Total number of database query errors",
			},
			[]string{"operation", "table"},
		),

		ExternalAPIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_api_request_duration_seconds",
				Help:      "External API request duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "status"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"endpoint", "method", "status"},
		),
		ExternalAPIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"endpoint", "error_type"},
		),

		WorkflowTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_transitions_total",
				Help:      "Total number of committed workflow transitions",
			},
			[]string{"scope", "action", "to_status"},
		),
		WorkflowRejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_refused_total",
				Help:      "Total number of workflow actions refused, by error code",
			},
			[]string{"scope", "action", "code"},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_created_total",
				Help:      "Total number of notifications stored",
			},
			[]string{"type"},
		),
		NotificationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_failures_total",
				Help:      "Total number of notification writes or deliveries that failed",
			},
			[]string{"stage"},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of events handed to a publisher",
			},
			[]string{"sink", "result"},
		),

		SitesTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sites_total",
				Help:      "Number of sites by lifecycle status",
			},
			[]string{"status"},
		),
		TasksTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Number of tasks by workflow status",
			},
			[]string{"status"},
		),
		PendingApprovalsTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_approvals_total",
				Help:      "Number of tasks and phases waiting for approval",
			},
			[]string{"scope"},
		),
		ChatConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_connections",
			Help:      "Current number of open chat websocket connections",
		}),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.Error("Panic in metrics operation",
					zap.String("operation", operation),
					zap.Any("panic", r),
				)
			}
		}
	}()
	fn()
}
