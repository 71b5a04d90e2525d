// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatorMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewValidatorMetrics(reg)
	require.NotNil(t, metrics)

	metrics.RecordRequest("validate", "success")
	metrics.RecordRequest("validate", "client_error")
	metrics.RecordFinding("repeated-phrase", "high")
	metrics.ObserveDuration("validate", 40*time.Millisecond)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("validate", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("validate", "client_error")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.FindingsTotal.WithLabelValues("repeated-phrase", "high")))
}

func TestMetricsUseSeparateRegistries(t *testing.T) {
	// Two instances on fresh registries must not collide; main uses the
	// default registerer, tests their own.
	a := NewValidatorMetrics(prometheus.NewRegistry())
	b := NewValidatorMetrics(prometheus.NewRegistry())
	a.RecordRequest("validate", "success")
	assert.Equal(t, float64(0),
		testutil.ToFloat64(b.RequestsTotal.WithLabelValues("validate", "success")))
}
