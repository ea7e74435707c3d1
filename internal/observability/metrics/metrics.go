// Package metrics turns portal auth and navigation events into StatsD and Prometheus series.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	domainauth "github.com/target/content-portal/internal/domain/auth"
	obserrors "github.com/target/content-portal/internal/observability/errors"
	"github.com/target/content-portal/internal/observability/statsd"
	"github.com/target/content-portal/internal/ports"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Observer receives events that have no counter in the analytics snapshot.
type Observer interface {
	ObserveAuthFailure(err error)
	ObserveGuardDecision(outcome string)
}

var (
	_ ports.AnalyticsRecorder = (*StatsdRecorder)(nil)
	_ ports.AnalyticsRecorder = (*Prometheus)(nil)
	_ Observer                = (*StatsdRecorder)(nil)
	_ Observer                = (*Prometheus)(nil)
	_ Observer                = Observers(nil)
)

// StatsdRecorder emits analytics events as StatsD counters.
type StatsdRecorder struct {
	sink statsd.Sink
}

// NewStatsdRecorder wraps sink. A nil sink yields a recorder that drops everything.
func NewStatsdRecorder(sink statsd.Sink) *StatsdRecorder {
	return &StatsdRecorder{sink: sink}
}

func (r *StatsdRecorder) RecordLogin(context.Context) error {
	if r.sink != nil {
		r.sink.Count("auth.login", 1, map[string]string{"result": ResultSuccess})
	}
	return nil
}

func (r *StatsdRecorder) RecordPageVisit(_ context.Context, page domainauth.PageID) error {
	if r.sink != nil {
		r.sink.Count("page.visit", 1, map[string]string{"page": string(page)})
	}
	return nil
}

func (r *StatsdRecorder) ObserveAuthFailure(err error) {
	if r.sink == nil || err == nil {
		return
	}
	r.sink.Count("auth.login", 1, map[string]string{
		"result":      ResultError,
		"error_class": obserrors.Classify(err),
	})
}

func (r *StatsdRecorder) ObserveGuardDecision(outcome string) {
	if r.sink != nil {
		r.sink.Count("guard.decision", 1, map[string]string{"outcome": outcome})
	}
}

// Prometheus holds the portal's Prometheus collectors.
type Prometheus struct {
	logins         prometheus.Counter
	pageVisits     *prometheus.CounterVec
	authFailures   *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "successful_logins_total",
			Help:      "Successful logins.",
		}),
		pageVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "page_visits_total",
			Help:      "Rendered visits to tracked pages.",
		}, []string{"page"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "auth_failures_total",
			Help:      "Rejected login and registration attempts by error class.",
		}, []string{"error_class"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "guard_decisions_total",
			Help:      "Route guard outcomes.",
		}, []string{"outcome"}),
	}
	if reg == nil {
		return p, nil
	}
	for _, c := range []prometheus.Collector{p.logins, p.pageVisits, p.authFailures, p.guardDecisions} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) RecordLogin(context.Context) error {
	p.logins.Inc()
	return nil
}

func (p *Prometheus) RecordPageVisit(_ context.Context, page domainauth.PageID) error {
	p.pageVisits.WithLabelValues(string(page)).Inc()
	return nil
}

func (p *Prometheus) ObserveAuthFailure(err error) {
	if err != nil {
		p.authFailures.WithLabelValues(obserrors.Classify(err)).Inc()
	}
}

func (p *Prometheus) ObserveGuardDecision(outcome string) {
	p.guardDecisions.WithLabelValues(outcome).Inc()
}

// Observers fans events out to every non-nil member.
type Observers []Observer

func (o Observers) ObserveAuthFailure(err error) {
	for _, ob := range o {
		if ob != nil {
			ob.ObserveAuthFailure(err)
		}
	}
}

func (o Observers) ObserveGuardDecision(outcome string) {
	for _, ob := range o {
		if ob != nil {
			ob.ObserveGuardDecision(outcome)
		}
	}
}

// IsAlreadyRegistered reports whether err came from registering a duplicate collector.
func IsAlreadyRegistered(err error) bool {
	var are prometheus.AlreadyRegisteredError
	return errors.As(err, &are)
}
