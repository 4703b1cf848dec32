// Package metrics defines the prometheus series exported by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsPrefix = "ou_mcp_"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeIgnored = "ignored"
)

var rpcRequestsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "rpc_requests_total",
		Help: "Number of JSON-RPC messages handled, by method and outcome",
	},
	[]string{"method", "outcome"},
)

var toolCallsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "tool_calls_total",
		Help: "Number of tool invocations, by tool and outcome",
	},
	[]string{"tool", "outcome"},
)

var toolCallDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    MetricsPrefix + "tool_call_duration_seconds",
		Help:    "Time taken to run a tool, including the downstream query",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"tool"},
)

// RecordRPC counts one JSON-RPC message. Callers should collapse unrouted
// methods to a fixed label to keep cardinality bounded.
func RecordRPC(method, outcome string) {
	rpcRequestsCounter.WithLabelValues(method, outcome).Inc()
}

// RecordToolCall counts one tool invocation and observes its duration.
func RecordToolCall(tool, outcome string, duration time.Duration) {
	toolCallsCounter.WithLabelValues(tool, outcome).Inc()
	toolCallDurationHist.WithLabelValues(tool).Observe(duration.Seconds())
}
