package metrics

// RecordTransition counts a committed workflow transition
func (m *Metrics) RecordTransition(scope, action, toStatus string) {
	m.safeExecute("RecordTransition", func() {
		m.WorkflowTransitionsTotal.WithLabelValues(scope, action, toStatus).Inc()
	})
}

// RecordRefusal counts a workflow action that was refused with an error code
func (m *Metrics) RecordRefusal(scope, action, code string) {
	m.safeExecute("RecordRefusal", func() {
		m.WorkflowRejectionsTotal.WithLabelValues(scope, action, code).Inc()
	})
}

// AddNotifications counts stored notifications of one type
func (m *Metrics) AddNotifications(notificationType string, n int) {
	m.safeExecute("AddNotifications", func() {
		m.NotificationsTotal.WithLabelValues(notificationType).Add(float64(n))
	})
}

// IncrementNotificationFailure counts a failed notification stage (store, cache, publish, webhook)
func (m *Metrics) IncrementNotificationFailure(stage string) {
	m.safeExecute("IncrementNotificationFailure", func() {
		m.NotificationFailures.WithLabelValues(stage).Inc()
	})
}

// RecordPublish counts an event handed to sink
func (m *Metrics) RecordPublish(sink string, err error) {
	m.safeExecute("RecordPublish", func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.EventsPublishedTotal.WithLabelValues(sink, result).Inc()
	})
}

// SetSitesTotal sets the site gauge for one status
func (m *Metrics) SetSitesTotal(status string, count int64) {
	m.safeExecute("SetSitesTotal", func() {
		m.SitesTotal.WithLabelValues(status).Set(float64(count))
	})
}

// SetTasksTotal sets the task gauge for one status
func (m *Metrics) SetTasksTotal(status string, count int64) {
	m.safeExecute("SetTasksTotal", func() {
		m.TasksTotal.WithLabelValues(status).Set(float64(count))
	})
}

// SetPendingApprovals sets the waiting-for-approval gauge for one scope
func (m *Metrics) SetPendingApprovals(scope string, count int64) {
	m.safeExecute("SetPendingApprovals", func() {
		m.PendingApprovalsTotal.WithLabelValues(scope).Set(float64(count))
	})
}

// ChatConnected and ChatDisconnected track open websocket clients
func (m *Metrics) ChatConnected() {
	m.safeExecute("ChatConnected", func() { m.ChatConnections.Inc() })
}

func (m *Metrics) ChatDisconnected() {
	m.safeExecute("ChatDisconnected", func() { m.ChatConnections.Dec() })
}
