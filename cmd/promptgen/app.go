package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v10"

	promptgen "github.com/goliatone/go-promptgen"
	"github.com/goliatone/go-promptgen/internal/config"
	"github.com/goliatone/go-promptgen/internal/metrics"
	"github.com/goliatone/go-promptgen/pkg/catalog"
	"github.com/goliatone/go-promptgen/pkg/gist"
	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/orchestrator"
	"github.com/goliatone/go-promptgen/pkg/renderers/tui"
	"github.com/goliatone/go-promptgen/pkg/store"
)

// cliClient scopes the selection and form state written by terminal commands.
const cliClient = "cli"

// globalFlags override the environment for every command.
type globalFlags struct {
	templatesDir string
	storeDriver  string
	storeDSN     string
	logLevel     string
	noEscape     bool
}

// runtime carries the process-level inputs commands read from, so tests can
// replace them.
type runtime struct {
	// environ replaces os.Environ when non-nil.
	environ map[string]string
	flags   globalFlags
	// quiet lowers the default log level to warn for terminal commands.
	quiet bool
	// prompts answers interactive questions; nil uses the terminal.
	prompts tui.PromptDriver
}

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    store.Store
	prefs    *store.Preferences
	catalog  *catalog.Catalog
	orch     *orchestrator.Orchestrator
	recorder metrics.Recorder
	metrics  *metrics.Prometheus
}

func (rt *runtime) loadConfig() (*config.Config, error) {
	options := env.Options{}
	if rt.environ != nil {
		options.Environment = rt.environ
	}
	cfg, err := config.LoadWith(options)
	if err != nil {
		return nil, err
	}
	if rt.flags.templatesDir != "" {
		cfg.TemplatesSource = config.SourceDirectory
		cfg.TemplatesDir = rt.flags.templatesDir
	}
	if rt.flags.storeDriver != "" {
		cfg.StoreDriver = rt.flags.storeDriver
	}
	if rt.flags.storeDSN != "" {
		cfg.StoreDSN = rt.flags.storeDSN
	}
	switch {
	case rt.flags.logLevel != "":
		cfg.LogLevel = rt.flags.logLevel
	case rt.quiet:
		cfg.LogLevel = "warn"
	}
	if rt.flags.noEscape {
		cfg.PromptHTMLEscape = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads the configuration and wires store, catalog and orchestrator.
// Logs go to logOut.
func (rt *runtime) newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := rt.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := initLogger(cfg, logOut)

	st, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	prefs := store.NewPreferences(st)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		prefs:    prefs,
		recorder: metrics.NewNoop(),
	}
	if cfg.MetricsEnabled {
		a.metrics = metrics.NewPrometheus()
		a.recorder = a.metrics
	}

	a.catalog = newCatalog(cfg, prefs, logger, catalog.WithReloadHook(func([]model.Template) {
		a.recorder.IncTemplateChange("reload")
	}))
	a.orch = promptgen.NewOrchestrator(
		orchestrator.WithTemplates(a.catalog),
		orchestrator.WithLogger(logger),
		orchestrator.WithHTMLEscape(cfg.PromptHTMLEscape),
		orchestrator.WithComposeObserver(func(templateID string, err error) {
			if err != nil {
				a.recorder.IncPromptGenerated("error")
				return
			}
			a.recorder.IncPromptGenerated("ok")
		}),
	)
	return a, nil
}

// Close releases the store.
func (a *app) Close() error {
	return store.Close(a.store)
}

// newCatalog selects the template source named in cfg.
func newCatalog(cfg *config.Config, prefs *store.Preferences, logger *slog.Logger, extra ...catalog.Option) *catalog.Catalog {
	var loaderOptions []catalog.LoaderOption
	options := []catalog.Option{
		catalog.WithPreferences(prefs),
		catalog.WithLogger(logger),
		catalog.WithGistFetcher(gist.New(
			gist.WithToken(cfg.GistToken),
			gist.WithAPIBase(cfg.GistAPIBase),
		)),
	}

	switch cfg.TemplatesSource {
	case config.SourceDirectory:
		options = append(options, catalog.WithDirectory(cfg.TemplatesDir))
	case config.SourceURL:
		loaderOptions = append(loaderOptions, catalog.WithHTTPFallback(cfg.FetchTimeout))
		options = append(options, catalog.WithResolver(catalog.URLResolver(cfg.TemplatesURL)))
	case config.SourceS3:
		loaderOptions = append(loaderOptions, catalog.WithS3Client(promptgen.NewS3Client(promptgen.S3Config{
			Region:       cfg.TemplatesRegion,
			Endpoint:     cfg.TemplatesEndpoint,
			UsePathStyle: cfg.TemplatesEndpoint != "",
		})))
		options = append(options, catalog.WithResolver(catalog.S3Resolver(cfg.TemplatesBucket, cfg.TemplatesPrefix)))
	}
	if len(cfg.TemplatesManifest) > 0 {
		options = append(options, catalog.WithManifest(cfg.TemplatesManifest...))
	}
	return promptgen.NewCatalog(loaderOptions, append(options, extra...)...)
}

// initLogger builds the process logger in the configured format.
func initLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevelValue()}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// keyBytes decodes a 64 character hex key and uses any other value verbatim.
// Blank keys stay nil so the handler generates one.
func keyBytes(raw string) []byte {
	if raw == "" {
		return nil
	}
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded
		}
	}
	return []byte(raw)
}
