package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phuhao00/rpgserver/server/internal/protocol"
)

// Dispatch outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnroutable   = "unroutable"
	OutcomeMalformed    = "malformed"
	OutcomeHandlerError = "handler_error"
	OutcomeFailureRsp   = "failure_rsp"
	OutcomeInternal     = "internal_error"
)

// UnknownCommand is the cmd label shared by every id outside the catalogue,
// so client-chosen ids cannot grow the series count.
const UnknownCommand = "unknown"

// CommandLabel returns the cmd label value for cmd.
func CommandLabel(cmd protocol.CmdID) string {
	if !cmd.Known() {
		return UnknownCommand
	}
	return cmd.String()
}

// Registry holds every collector the server exports.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	PacketsReceived = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpgserver",
		Name:      "packets_received_total",
		Help:      "Inbound packets by command.",
	}, []string{"cmd"})

	DispatchTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpgserver",
		Name:      "dispatch_total",
		Help:      "Dispatched packets by command and outcome.",
	}, []string{"cmd", "outcome"})

	PacketsDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "rpgserver",
		Name:      "packets_dropped_total",
		Help:      "Inbound packets dropped by the per-session rate limit.",
	})

	Connections = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpgserver",
		Name:      "connections_total",
		Help:      "Accepted client connections by transport.",
	}, []string{"transport"})

	OnlineSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "rpgserver",
		Name:      "online_sessions",
		Help:      "Authenticated sessions registered with the world manager.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// NewMux returns the ops mux: /metrics and /healthz.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
