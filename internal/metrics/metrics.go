// Package metrics exposes the server's Prometheus counters and the HTTP
// handler that scrapes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal counts every accepted TCP connection.
	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gokv",
		Name:      "connections_total",
		Help:      "Total number of accepted connections.",
	})

	// CommandsTotal counts dispatched commands by name.
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokv",
		Name:      "commands_total",
		Help:      "Total number of dispatched commands, by command name.",
	}, []string{"command"})

	// CommandErrorsTotal counts handler errors by command name.
	CommandErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gokv",
		Name:      "command_errors_total",
		Help:      "Total number of commands that resulted in an Error reply, by command name.",
	}, []string{"command"})
)

// MustRegister registers every collector in this package with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(ConnectionsTotal, CommandsTotal, CommandErrorsTotal)
}

// NewRegistry builds a fresh prometheus.Registry with this package's
// collectors already registered, ready to back a scrape endpoint.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	MustRegister(reg)
	return reg
}

// Handler returns the HTTP handler that serves reg's metrics in the
// Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
