package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"

	promptgen "github.com/goliatone/go-promptgen"
	"github.com/goliatone/go-promptgen/api"
	"github.com/goliatone/go-promptgen/internal/handler"
	"github.com/goliatone/go-promptgen/internal/middleware"
	"github.com/goliatone/go-promptgen/internal/server"
	"github.com/goliatone/go-promptgen/pkg/store"
)

func serveCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rt)
		},
	}
	return cmd
}

func runServe(ctx context.Context, rt *runtime) error {
	a, err := rt.newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	logger := a.logger

	logger.Info("starting promptgen",
		"env", a.cfg.AppEnv,
		"addr", a.cfg.Addr(),
		"templates", a.cfg.TemplatesSource,
		"store", a.cfg.StoreDriver,
		"version", version,
	)

	templates := a.catalog.Load(ctx)
	if err := a.catalog.Degraded(); err != nil {
		logger.Warn("serving fallback templates", "error", err, "count", len(templates))
	}

	doc, err := middleware.LoadOpenAPI(ctx, api.OpenAPI)
	if err != nil {
		_ = a.Close()
		return err
	}

	var sessionStore sessions.Store
	if key := keyBytes(a.cfg.SessionKey); key != nil {
		sessionStore = handler.NewSessionStore(key, a.cfg.SecureCookie)
	}

	deps := handler.Deps{
		Catalog:      a.catalog,
		Orchestrator: a.orch,
		Preferences:  a.prefs,
		Store:        a.store,
		Sessions:     sessionStore,
		CSRFKey:      keyBytes(a.cfg.CSRFKey),
		SecureCookie: a.cfg.SecureCookie,
		OpenAPI:      doc,
		OpenAPIYAML:  api.OpenAPI,
		Metrics:      a.recorder,
		Assets:       promptgen.RuntimeAssetsFS(),
		Logger:       logger,
	}
	if a.metrics != nil {
		deps.MetricsHandler = a.metrics.Handler()
	}

	h, err := handler.New(deps)
	if err != nil {
		_ = a.Close()
		return err
	}
	routes, err := h.Routes()
	if err != nil {
		_ = a.Close()
		return err
	}

	srv := server.New(routes, server.Options{
		Addr:            a.cfg.Addr(),
		ReadTimeout:     a.cfg.ReadTimeout,
		WriteTimeout:    a.cfg.WriteTimeout,
		ShutdownTimeout: a.cfg.ShutdownTimeout,
		Logger:          logger,
	})
	srv.OnShutdown("store", func(context.Context) error {
		return a.Close()
	})

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	if a.cfg.TemplatesWatch {
		go func() {
			if err := a.catalog.Watch(watchCtx); err != nil {
				logger.Error("template watch stopped", "error", err)
			}
		}()
	}
	if file, ok := a.store.(*store.File); ok {
		go func() {
			if err := file.Watch(watchCtx); err != nil {
				logger.Error("store watch stopped", "path", file.Path(), "error", err)
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
