// Package metrics exposes Prometheus collectors for the order bot.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/robux-town/order-bot/internal/wizard"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled, labeled by action and status",
		},
		[]string{"action", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of bot update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	stageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_stage_transitions_total",
			Help: "Total number of wizard stage transitions",
		},
		[]string{"from", "to"},
	)
	ordersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of recorded orders, labeled by payment method",
		},
		[]string{"method"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_wizard_sessions",
			Help: "Current number of in-flight wizard sessions",
		},
	)
)

func init() {
	wizard.RegisterTransitionRecorder(RecordStageTransition)
}

// RecordUpdate increments update counters and records handling duration.
func RecordUpdate(action, status string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(action, status).Inc()
	updateDurationSeconds.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordStageTransition tracks wizard stage transitions.
func RecordStageTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stageTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordOrder counts a recorded order by payment method.
func RecordOrder(method string) {
	if method == "" {
		method = "unknown"
	}

	ordersTotal.WithLabelValues(method).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// UpdateActiveSessions refreshes the active-session gauge from storage.
func UpdateActiveSessions(ctx context.Context, storage wizard.Storage) error {
	sessions, err := storage.AllSessions(ctx)
	if err != nil {
		return err
	}

	active := 0
	for _, session := range sessions {
		if session != nil && !session.Stage.IsTerminal() {
			active++
		}
	}

	activeSessions.Set(float64(active))
	return nil
}
