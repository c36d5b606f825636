// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitr"

// Notification results recorded by NotificationSent.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Collectors groups every metric the service records. A nil *Collectors is
// valid and records nothing.
type Collectors struct {
	registry *prometheus.Registry

	alertsCreated      *prometheus.CounterVec
	alertTransitions   *prometheus.CounterVec
	alertNotifications *prometheus.CounterVec
	usageReport        prometheus.Histogram
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	monitorSamples     *prometheus.GaugeVec
}

// New creates collectors on a private registry that also carries the Go
// runtime and process collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collectors{
		registry: reg,
		alertsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_created_total",
				Help:      "Alerts created, by severity",
			},
			[]string{"severity"},
		),
		alertTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_transitions_total",
				Help:      "Alert acknowledge/resolve/delete operations",
			},
			[]string{"action"},
		),
		alertNotifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_notifications_total",
				Help:      "Alert notification dispatch outcomes",
			},
			[]string{"result"},
		),
		usageReport: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "usage_report_duration_seconds",
				Help:      "Time spent computing usage analytics reports",
				Buckets:   prometheus.DefBuckets,
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests handled",
			},
			[]string{"method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		monitorSamples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "host_resource_usage_percent",
				Help:      "Last sampled host resource usage",
			},
			[]string{"resource"},
		),
	}

	reg.MustRegister(
		c.alertsCreated,
		c.alertTransitions,
		c.alertNotifications,
		c.usageReport,
		c.httpRequests,
		c.httpDuration,
		c.monitorSamples,
	)

	return c
}

// Registry exposes the underlying registry (for tests and custom handlers).
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collectors) AlertCreated(severity string) {
	if c == nil {
		return
	}
	c.alertsCreated.WithLabelValues(severity).Inc()
}

func (c *Collectors) AlertTransition(action string) {
	if c == nil {
		return
	}
	c.alertTransitions.WithLabelValues(action).Inc()
}

func (c *Collectors) NotificationSent(result string) {
	if c == nil {
		return
	}
	c.alertNotifications.WithLabelValues(result).Inc()
}

func (c *Collectors) ObserveUsageReport(d time.Duration) {
	if c == nil {
		return
	}
	c.usageReport.Observe(d.Seconds())
}

func (c *Collectors) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (c *Collectors) SetResourceUsage(resource string, percent float64) {
	if c == nil {
		return
	}
	c.monitorSamples.WithLabelValues(resource).Set(percent)
}
