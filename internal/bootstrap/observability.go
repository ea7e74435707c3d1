package bootstrap

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/target/content-portal/config"
	"github.com/target/content-portal/internal/observability/metrics"
	"github.com/target/content-portal/internal/observability/statsd"
	"github.com/target/content-portal/internal/ports"
)

// ObservabilityContainer holds metric emitters shared by services and the router.
type ObservabilityContainer struct {
	// Registry backs /metrics; nil when Prometheus is disabled.
	Registry *prometheus.Registry
	// Recorders receive analytics events alongside the admin counters.
	Recorders []ports.AnalyticsRecorder
	Observer  metrics.Observer
	statsd    *statsd.Client
}

// Gatherer returns the registry as a prometheus.Gatherer, or nil when disabled.
//
//nolint:ireturn // router accepts any gatherer
func (o ObservabilityContainer) Gatherer() prometheus.Gatherer {
	if o.Registry == nil {
		return nil
	}
	return o.Registry
}

// Close releases the StatsD socket.
func (o ObservabilityContainer) Close() error {
	if o.statsd == nil {
		return nil
	}
	return o.statsd.Close()
}

// BuildObservability wires StatsD and Prometheus emitters. Failures disable the
// affected emitter and are logged; they never prevent startup.
func BuildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		out       ObservabilityContainer
		observers metrics.Observers
	)

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Warn("statsd disabled", "error", err)
		} else {
			out.statsd = client
			rec := metrics.NewStatsdRecorder(client)
			out.Recorders = append(out.Recorders, rec)
			observers = append(observers, rec)
		}
	}

	if cfg.Prometheus.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := metrics.NewPrometheus(reg)
		switch {
		case err == nil:
			out.Registry = reg
			out.Recorders = append(out.Recorders, prom)
			observers = append(observers, prom)
		case metrics.IsAlreadyRegistered(err):
			out.Registry = reg
		default:
			logger.Warn("prometheus metrics disabled", "error", err)
		}
	}

	out.Observer = observers
	return out
}
