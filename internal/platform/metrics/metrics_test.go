// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/greeter/internal/platform/metrics"
)

/*
TestCollector_Counters verifies that each label is counted independently.
*/
func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	collector.RecordRateLimit(metrics.DecisionAdmitted)
	collector.RecordRateLimit(metrics.DecisionAdmitted)
	collector.RecordRateLimit(metrics.DecisionDenied)
	collector.RecordRememberMe(metrics.RememberMeTheft)

	count, err := testutil.GatherAndCount(reg, "greeter_ratelimit_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "greeter_rememberme_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

/*
TestHandler_ServesMetrics verifies the scrape endpoint including the bucket gauge.
*/
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	collector.WatchBuckets(func() int { return 7 })
	collector.RecordRateLimit(metrics.DecisionDenied)

	recorder := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `greeter_ratelimit_decisions_total{decision="denied"} 1`)
	assert.Contains(t, string(body), "greeter_ratelimit_buckets 7")
}

/*
TestNop verifies the discard recorder is safe to call.
*/
func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.Nop.RecordRateLimit(metrics.DecisionDenied)
		metrics.Nop.RecordRememberMe(metrics.RememberMeIssued)
	})
}
