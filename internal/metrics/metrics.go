// Package metrics holds the Prometheus collectors for domain events that are
// not tied to a single HTTP request: entry-file persistence, reminder
// registration and notification delivery.
//
// Collectors are registered on the default registry at init, so the
// /metrics endpoint exposes them next to the HTTP middleware series.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// PersistFailures counts failed whole-file writes of the entry store.
	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hydration_store_persist_failures_total",
		Help: "Total number of failed writes of the entries file.",
	})

	// LoadFailures counts unreadable or undecodable entry files at startup.
	LoadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hydration_store_load_failures_total",
		Help: "Total number of entries-file loads that fell back to an empty list.",
	})

	// RemindersScheduled counts schedule attempts by outcome
	// ("ok", "not_authorized", "error").
	RemindersScheduled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hydration_reminders_scheduled_total",
		Help: "Total number of reminder schedule attempts by outcome.",
	}, []string{"outcome"})

	// NotificationsDelivered counts deliveries by channel and result.
	NotificationsDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hydration_notifications_delivered_total",
		Help: "Total number of notification deliveries by channel and result.",
	}, []string{"channel", "result"})

	// Exports counts export attempts by result ("ok" or "failed").
	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hydration_exports_total",
		Help: "Total number of entries-file exports by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(PersistFailures, LoadFailures, RemindersScheduled, NotificationsDelivered, Exports)
}

// Result maps a boolean outcome onto the "ok"/"failed" label values.
func Result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
