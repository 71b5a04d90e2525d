// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the validator
// service: request counters by outcome, validation latency, and a
// findings counter broken down by kind and severity. Metrics are exposed
// on /metrics; all operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "sentinel"

const validatorSubsystem = "validator"

// ValidatorMetrics holds all Prometheus metrics for the validation
// endpoint. Initialize once at startup via NewValidatorMetrics.
type ValidatorMetrics struct {
	// RequestsTotal counts validation requests.
	// Labels: endpoint, status (success, client_error, server_error, rate_limited)
	RequestsTotal *prometheus.CounterVec

	// ValidationDurationSeconds measures end-to-end handler latency.
	// Labels: endpoint
	ValidationDurationSeconds *prometheus.HistogramVec

	// FindingsTotal counts findings surfaced in reports.
	// Labels: kind, severity
	FindingsTotal *prometheus.CounterVec
}

// NewValidatorMetrics registers the validator metrics with the given
// registerer. Pass prometheus.DefaultRegisterer in main; tests use a
// fresh registry to avoid duplicate-registration panics.
func NewValidatorMetrics(reg prometheus.Registerer) *ValidatorMetrics {
	factory := promauto.With(reg)
	return &ValidatorMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: validatorSubsystem,
			Name:      "requests_total",
			Help:      "Validation requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		ValidationDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: validatorSubsystem,
			Name:      "validation_duration_seconds",
			Help:      "End-to-end validation handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		FindingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: validatorSubsystem,
			Name:      "findings_total",
			Help:      "Findings surfaced in safety reports, by kind and severity.",
		}, []string{"kind", "severity"}),
	}
}

// RecordRequest increments the request counter for one outcome.
func (m *ValidatorMetrics) RecordRequest(endpoint, status string) {
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// ObserveDuration records handler latency for one request.
func (m *ValidatorMetrics) ObserveDuration(endpoint string, d time.Duration) {
	m.ValidationDurationSeconds.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordFinding increments the findings counter for one report entry.
func (m *ValidatorMetrics) RecordFinding(kind, severity string) {
	m.FindingsTotal.WithLabelValues(kind, severity).Inc()
}
