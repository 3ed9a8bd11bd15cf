// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics collects Prometheus counters for the security edge of the
service: rate-limit decisions and remember-me outcomes.

The core packages never import this one. The HTTP layer records outcomes
through the [Recorder] interface so tests can pass [Nop].
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rate-limit decision labels.
const (
	DecisionAdmitted = "admitted"
	DecisionDenied   = "denied"
)

// Remember-me outcome labels.
const (
	RememberMeIssued   = "issued"
	RememberMeRotated  = "rotated"
	RememberMeRejected = "rejected"
	RememberMeExpired  = "expired"
	RememberMeTheft    = "theft"
	RememberMeRevoked  = "revoked"
)

// Recorder is the write side consumed by middleware and handlers.
type Recorder interface {
	RecordRateLimit(decision string)
	RecordRememberMe(outcome string)
}

// Collector is the Prometheus-backed [Recorder].
type Collector struct {
	rateLimit  *prometheus.CounterVec
	rememberMe *prometheus.CounterVec
	registerer prometheus.Registerer
}

// NewCollector creates a Collector and registers its series with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	collector := &Collector{
		rateLimit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greeter_ratelimit_decisions_total",
			Help: "Rate-limit gate decisions by outcome.",
		}, []string{"decision"}),
		rememberMe: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greeter_rememberme_events_total",
			Help: "Persistent-login protocol events by outcome.",
		}, []string{"outcome"}),
		registerer: reg,
	}

	reg.MustRegister(collector.rateLimit, collector.rememberMe)

	return collector
}

// WatchBuckets exposes the live bucket count through a gauge sampled at scrape time.
func (collector *Collector) WatchBuckets(count func() int) {
	collector.registerer.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "greeter_ratelimit_buckets",
		Help: "Number of live rate-limit buckets.",
	}, func() float64 {
		return float64(count())
	}))
}

// RecordRateLimit counts a gate decision.
func (collector *Collector) RecordRateLimit(decision string) {
	collector.rateLimit.WithLabelValues(decision).Inc()
}

// RecordRememberMe counts a remember-me protocol event.
func (collector *Collector) RecordRememberMe(outcome string) {
	collector.rememberMe.WithLabelValues(outcome).Inc()
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// # No-op

type nop struct{}

func (nop) RecordRateLimit(string)  {}
func (nop) RecordRememberMe(string) {}

// Nop discards every observation.
var Nop Recorder = nop{}
