// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

var errRouteExists = errors.New("route already exists")

type router struct {
	lock   sync.RWMutex
	router *mux.Router

	// Maps URLs to handlers
	routes map[string]http.Handler
}

func newRouter() *router {
	return &router{
		router: mux.NewRouter(),
		routes: make(map[string]http.Handler),
	}
}

func (r *router) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	r.router.ServeHTTP(writer, request)
}

// GetHandler returns the handler registered at base+endpoint.
func (r *router) GetHandler(base, endpoint string) (http.Handler, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	handler, exists := r.routes[base+endpoint]
	if !exists {
		return nil, fmt.Errorf("couldn't find route at %s%s", base, endpoint)
	}
	return handler, nil
}

// AddRouter registers handler at base+endpoint. Routes can't be replaced.
func (r *router) AddRouter(base, endpoint string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	url := base + endpoint
	if _, exists := r.routes[url]; exists {
		return fmt.Errorf("%w: %s", errRouteExists, url)
	}
	route := r.router.Handle(url, handler)
	if route == nil {
		return fmt.Errorf("failed to create new route for %s", url)
	}
	// Name routes based on their URL for easy retrieval in the future
	route.Name(url)
	r.routes[url] = handler
	return nil
}
