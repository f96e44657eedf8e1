// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/lending/api/server"
	"github.com/luxfi/lending/vms/poolvm"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Runs a pool chain and serves its API",
		RunE:  runFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewLogger("poolvm")
	db, err := badgerdb.New(
		config.DBDir,
		nil, // configBytes - use default
		"",  // namespace
		nil, // metrics
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", log.Err(err))
		}
	}()

	registry := metric.NewRegistry()
	vm := &poolvm.VM{}
	if err := vm.Initialize(ctx, db, config.GenesisBytes, config.ConfigBytes, logger, registry); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", config.HTTPAddress)
	if err != nil {
		return err
	}
	apiServer, err := server.New(
		logger,
		listener,
		config.AllowedOrigins,
		config.AllowedHosts,
		config.ShutdownTimeout,
		registry,
		server.HTTPConfig{
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
		},
	)
	if err != nil {
		return err
	}

	handlers, err := vm.CreateHandlers(ctx)
	if err != nil {
		return err
	}
	for endpoint, handler := range handlers {
		if err := apiServer.AddRoute(handler, "pool", endpoint); err != nil {
			return err
		}
	}
	if err := apiServer.AddRoute(server.HealthHandler(vm.HealthCheck), "health", ""); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := apiServer.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return errors.Join(
			apiServer.Shutdown(),
			vm.Shutdown(context.Background()),
		)
	})
	return g.Wait()
}
