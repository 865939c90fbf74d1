// Copyright (C) 2026-Present CloudFoundry.org Foundation, Inc. All rights reserved.
//
// This program and the accompanying materials are made available under
// the terms of the under the Apache License, Version 2.0 (the "License”);
// you may not use this file except in compliance with the License.
//
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the
// License for the specific language governing permissions and limitations
// under the License.

package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/spf13/cobra"

	"webcheck/handlers"
	"webcheck/writeprobe"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 15 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var listenAddr string

func init() {
	serveCommand.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (overrides the config file)")
	RootCmd.AddCommand(serveCommand)
}

var serveCommand = &cobra.Command{
	Long:  "Serves the diagnostic page and the ?ping health check",
	RunE:  serve,
	Short: "Serves the diagnostic page",
	Use:   "serve",
}

func serve(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listenAddr != "" {
		cfg.Listen = listenAddr
	}

	if err := setupLogger(cmd.OutOrStdout(), cfg); err != nil {
		return err
	}

	l := logger.Session("serve", lager.Data{"listen": cfg.Listen})

	clk := clock.NewClock()
	prober := writeprobe.New(cfg.TempDir, clk)
	handler := handlers.NewDiagnostic(logger.Session("handler"), clk, prober, hostInfo(cfg), handlers.Options{
		Location:         cfg.Location(),
		CapabilitySample: cfg.CapabilitySample,
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGQUIT)
	defer func() {
		signal.Stop(quit)
		close(quit)
	}()
	go dumpGoroutines(quit)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	l.Info("starting", lager.Data{"temp-dir": prober.Dir()})

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			l.Error("failed-to-serve", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("failed-to-shutdown", err)
		return err
	}

	l.Info("stopped")

	return nil
}

func dumpGoroutines(signals <-chan os.Signal) {
	for range signals {
		// Ignore the error here because if it occurs then there's nothing we can
		// do. We've already failed writing something to standard error!
		_ = pprof.Lookup("goroutine").WriteTo(os.Stderr, 1)
	}
}
