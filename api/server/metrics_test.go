// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	require := require.New(t)
	reg := metric.NewRegistry()

	metrics, err := newMetrics(reg)
	require.NoError(err)
	require.NotNil(metrics.requests)
	require.NotNil(metrics.duration)
	require.NotNil(metrics.inflight)

	// Second registration should fail due to duplicate metrics
	_, err = newMetrics(reg)
	require.Error(err)
}

func TestWrapHandler(t *testing.T) {
	require := require.New(t)
	metrics, err := newMetrics(metric.NewRegistry())
	require.NoError(err)

	calls := 0
	handler := metrics.wrapHandler("pool", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(method, "/ext/pool", nil))
		require.Equal(http.StatusNoContent, w.Code)
	}
	require.Equal(2, calls)
}
