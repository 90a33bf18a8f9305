package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tmitchel/chancache"
)

// Collectors registered on the default prometheus registry and served on
// /metrics.
var (
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chancache",
		Name:      "webhook_reconciliations_total",
		Help:      "Webhook reconciliation runs by result.",
	}, []string{"result"})

	WebhookChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chancache",
		Name:      "webhook_changes_total",
		Help:      "Cached webhooks created, updated or deleted by reconciliation.",
	}, []string{"kind"})

	TypingSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chancache",
		Name:      "typing_signals_total",
		Help:      "Typing signals sent by result.",
	}, []string{"result"})

	TypingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chancache",
		Name:      "typing_sessions",
		Help:      "Channels currently showing the typing indicator.",
	})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case chancache.IsStale(err):
		return "stale"
	case chancache.IsRateLimited(err):
		return "rate_limited"
	}
	return "error"
}
