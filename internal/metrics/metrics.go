// Package metrics exposes Prometheus counters for the booking flow.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pilates_studio"

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of confirmed bookings created.",
		},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejected_total",
			Help:      "Count of booking attempts rejected by reason.",
		},
		[]string{"reason"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled by users.",
		},
	)

	classChanged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "class_changes_total",
			Help:      "Count of staff changes to the class schedule.",
		},
		[]string{"action"},
	)

	eventPublishFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failed_total",
			Help:      "Count of domain events that could not be published.",
		},
		[]string{"routing_key"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingRejected, bookingCancelled, classChanged, eventPublishFailed)
	})
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func IncBookingCreated() { bookingCreated.Inc() }

func IncBookingRejected(reason string) { bookingRejected.WithLabelValues(reason).Inc() }

func IncBookingCancelled() { bookingCancelled.Inc() }

func IncClassChanged(action string) { classChanged.WithLabelValues(action).Inc() }

func IncEventPublishFailed(routingKey string) { eventPublishFailed.WithLabelValues(routingKey).Inc() }
