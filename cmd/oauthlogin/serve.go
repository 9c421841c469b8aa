// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/oauthlogin/config"
	"github.com/hashicorp/oauthlogin/flow"
	"github.com/hashicorp/oauthlogin/handler"
	"github.com/hashicorp/oauthlogin/session"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the login flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig(flags, hclog.NewNullLogger())
			if err != nil {
				return err
			}
			logger := newLogger(c, cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c, logger)
		},
	}
}

// newServer wires the login flow described by c. The returned func releases
// the providers.
func newServer(c *config.Config, store session.Store, logger hclog.Logger) (http.Handler, func(), error) {
	providers, err := c.BuildProviders(logger.Named("provider"))
	if err != nil {
		return nil, nil, err
	}
	kinds := handler.NewRegistry()
	if err := handler.RegisterBuiltins(kinds, logger.Named("handler")); err != nil {
		providers.Done()
		return nil, nil, err
	}
	ctl, err := flow.NewController(&flow.Config{
		Segment:   c.Segment,
		BaseURL:   c.BaseURL,
		Providers: providers,
		Store:     store,
		Handlers:  c.Descriptors(),
		Kinds:     kinds,
	}, flow.WithLogger(logger.Named("flow")))
	if err != nil {
		providers.Done()
		return nil, nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/"+ctl.Segment()+"/", ctl.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, name := range providers.Names() {
			fmt.Fprintf(w, "/%s/authenticate?provider=%s&scope[]=\n", ctl.Segment(), name)
		}
	})
	return mux, providers.Done, nil
}

func serve(ctx context.Context, c *config.Config, logger hclog.Logger) error {
	store := c.SessionStore()
	h, done, err := newServer(c, store, logger)
	if err != nil {
		return err
	}
	defer done()

	go sweep(ctx, store, c.Session.SweepInterval, logger.Named("session"))

	srv := &http.Server{
		Addr:              c.Listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", c.Listen, "base_url", c.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweep drops expired sessions from the store until ctx is done.
func sweep(ctx context.Context, store *session.MemoryStore, interval time.Duration, logger hclog.Logger) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
