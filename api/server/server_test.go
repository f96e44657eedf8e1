// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, allowedHosts []string) *server {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = listener.Close()
	})

	s, err := New(
		log.NewNoOpLogger(),
		listener,
		[]string{"*"},
		allowedHosts,
		time.Second,
		metric.NewRegistry(),
		HTTPConfig{},
	)
	require.NoError(t, err)
	return s.(*server)
}

func TestAddRoute(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t, []string{"*"})

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	require.NoError(s.AddRoute(handler, "pool", ""))
	require.ErrorIs(s.AddRoute(handler, "pool", ""), errRouteExists)
	require.NoError(s.AddRoute(handler, "pool", "/ws"))

	_, err := s.router.GetHandler("/ext/pool", "")
	require.NoError(err)
	_, err = s.router.GetHandler("/ext/other", "")
	require.Error(err)

	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ext/pool", nil))
	require.Equal(http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ext/missing", nil))
	require.Equal(http.StatusNotFound, w.Code)
}

func TestAllowedHosts(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t, []string{"localhost"})
	require.NoError(s.AddRoute(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), "pool", ""))

	tests := []struct {
		host     string
		expected int
	}{
		{host: "localhost:9650", expected: http.StatusOK},
		{host: "LOCALHOST", expected: http.StatusOK},
		{host: "127.0.0.1:9650", expected: http.StatusOK},
		{host: "example.com", expected: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ext/pool", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			s.srv.Handler.ServeHTTP(w, req)
			require.Equal(tt.expected, w.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	require := require.New(t)

	healthy := HealthHandler(func(context.Context) (interface{}, error) {
		return map[string]uint64{"height": 3}, nil
	})
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ext/health", nil))
	require.Equal(http.StatusOK, w.Code)
	require.JSONEq(`{"healthy":true,"details":{"height":3}}`, w.Body.String())

	failing := HealthHandler(func(context.Context) (interface{}, error) {
		return nil, errors.New("not initialized")
	})
	w = httptest.NewRecorder()
	failing.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ext/health", nil))
	require.Equal(http.StatusServiceUnavailable, w.Code)
	require.JSONEq(`{"healthy":false,"error":"not initialized"}`, w.Body.String())
}

func TestDispatchAndShutdown(t *testing.T) {
	require := require.New(t)
	s := newTestServer(t, []string{"*"})
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), "pool", ""))

	errs := make(chan error, 1)
	go func() {
		errs <- s.Dispatch()
	}()

	url := "http://" + s.listener.Addr().String() + "/ext/pool"
	require.Eventually(func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusAccepted
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(s.Shutdown())
	require.ErrorIs(<-errs, http.ErrServerClosed)
}
