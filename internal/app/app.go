// Package app builds the menumaker services from settings and shares them
// between the CLI commands and the HTTP server.
package app

import (
	"context"
	"os"
	"time"

	"github.com/menumaker/menumaker/internal/buildinfo"
	"github.com/menumaker/menumaker/internal/conf"
	"github.com/menumaker/menumaker/internal/credentials"
	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/generation"
	"github.com/menumaker/menumaker/internal/history"
	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/imageprovider"
	"github.com/menumaker/menumaker/internal/inline"
	"github.com/menumaker/menumaker/internal/kvstore"
	"github.com/menumaker/menumaker/internal/llm"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/notification"
	"github.com/menumaker/menumaker/internal/observability"
	"github.com/menumaker/menumaker/internal/prefs"
	"github.com/menumaker/menumaker/internal/render"
)

// Context carries the config file path and the loaded settings from the
// root command into its subcommands.
type Context struct {
	ConfigFile string
	Debug      bool
	Build      *buildinfo.Context
	Settings   *conf.Settings
	Logger     logger.Logger

	central *logger.CentralLogger
	sentry  bool
}

const sentryFlushTimeout = 2 * time.Second

// Load reads the settings and sets up logging and error telemetry.
func (c *Context) Load() error {
	settings, err := conf.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	if c.Debug {
		settings.Debug = true
		settings.Main.Log.DefaultLevel = "debug"
		if settings.Main.Log.Console != nil {
			settings.Main.Log.Console.Level = "debug"
		}
	}
	c.Settings = settings

	central, err := logger.NewCentralLogger(&settings.Main.Log)
	if err != nil {
		return err
	}
	logger.SetGlobal(central)
	c.central = central
	c.Logger = central.Module("menumaker")

	if settings.Telemetry.Enabled && settings.Telemetry.DSN != "" {
		if err := errors.InitSentry(settings.Telemetry.DSN, c.Build.GetVersion()); err != nil {
			c.Logger.Warn("error telemetry disabled", logger.Error(err))
		} else {
			c.sentry = true
		}
	}
	return nil
}

// Close flushes error telemetry and closes the log outputs. It is safe to
// call more than once.
func (c *Context) Close() {
	if c.sentry {
		errors.FlushSentry(sentryFlushTimeout)
		c.sentry = false
	}
	if c.central != nil {
		_ = c.central.Close()
		c.central = nil
	}
}

// Option configures App construction.
type Option func(*options)

type options struct {
	notifications bool
	metrics       bool
	generation    []generation.Option
}

// WithNotifications connects the configured notification targets.
func WithNotifications() Option {
	return func(o *options) { o.notifications = true }
}

// WithMetrics creates the Prometheus registry and instruments the services.
func WithMetrics() Option {
	return func(o *options) { o.metrics = true }
}

// WithGenerationOptions passes options to the generation service.
func WithGenerationOptions(opts ...generation.Option) Option {
	return func(o *options) { o.generation = append(o.generation, opts...) }
}

// App holds the wired services.
type App struct {
	Settings    *conf.Settings
	Logger      logger.Logger
	Store       kvstore.Store
	HTTPClient  *httpclient.Client
	Metrics     *observability.Metrics
	Credentials *credentials.Store
	History     *history.Service
	Prefs       *prefs.Store
	Registry    *imageprovider.Registry
	Renderer    *render.Renderer
	Inliner     *inline.Inliner
	Generation  *generation.Service

	closers []func()
}

// New opens storage and builds every service from settings.
func New(ctx context.Context, settings *conf.Settings, log logger.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.NewSlogLogger(os.Stderr, logger.LogLevelInfo, nil)
	}

	a := &App{Settings: settings, Logger: log}

	store, err := kvstore.Open(ctx, &settings.Storage, log)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, func() { _ = store.Close() })

	a.HTTPClient = httpclient.New(&httpclient.Config{
		DefaultTimeout:    settings.HTTP.Timeout,
		UserAgent:         settings.HTTP.UserAgent,
		RequestsPerSecond: settings.HTTP.RequestsPerSecond,
	})
	a.closers = append(a.closers, a.HTTPClient.Close)

	var genMetrics generation.Metrics
	var inlineMetrics inline.MetricsRecorder = noInlineMetrics{}
	if o.metrics {
		m, err := observability.NewMetrics()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Metrics = m
		m.InstrumentClient(a.HTTPClient)
		genMetrics = m.Generation
		inlineMetrics = m.Generation
	}

	a.Credentials = credentials.New(store, settings.Storage.EncryptionKey, configuredKeys(settings), log)
	a.History = history.NewService(store,
		history.WithMaxEntries(settings.History.MaxEntries),
		history.WithLogger(log),
	)
	a.Prefs = prefs.New(store, log)

	a.Registry, err = registryFromSettings(&settings.Images, a.HTTPClient, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Renderer, err = render.New(render.Options{QRURL: settings.Render.QRURL})
	if err != nil {
		a.Close()
		return nil, err
	}

	if settings.Inline.Enabled {
		a.Inliner = inline.New(a.HTTPClient, inline.Config{
			MaxBytes: settings.Inline.MaxBytes,
			CacheTTL: settings.Inline.CacheTTL,
		}, inlineMetrics, log)
	}

	var notifier notification.Notifier = notification.Nop{}
	if o.notifications {
		multi, closeNotifiers := notification.FromSettings(ctx, &settings.Notification, log)
		a.closers = append(a.closers, closeNotifiers)
		if multi.Len() > 0 {
			notifier = multi
		}
	}

	generator := llm.NewOpenAIGenerator(llm.Config{
		Model:       settings.LLM.Model,
		BaseURL:     settings.LLM.BaseURL,
		Temperature: settings.LLM.Temperature,
		MaxTokens:   settings.LLM.MaxTokens,
		Timeout:     settings.LLM.Timeout,
		HTTPClient:  a.HTTPClient.Doer(),
	}, log)

	source, err := imageprovider.ParseSource(settings.Images.DefaultSource)
	if err != nil {
		a.Close()
		return nil, err
	}
	style, err := imageprovider.ParseStyle(settings.Images.DefaultStyle)
	if err != nil {
		a.Close()
		return nil, err
	}

	genOpts := append([]generation.Option{
		generation.WithDefaults(source, style, settings.Images.Background),
	}, o.generation...)
	a.Generation = generation.NewService(generation.Dependencies{
		Generator:   generator,
		Registry:    a.Registry,
		HTTPClient:  a.HTTPClient,
		Inliner:     a.Inliner,
		History:     a.History,
		Credentials: a.Credentials,
		Metrics:     genMetrics,
		Notifier:    notifier,
		Logger:      log,
	}, genOpts...)
	a.closers = append(a.closers, a.Generation.Close)

	return a, nil
}

// Close releases services in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// configuredKeys maps provider keys from config and environment.
func configuredKeys(s *conf.Settings) map[credentials.Provider]credentials.ConfiguredKey {
	return map[credentials.Provider]credentials.ConfiguredKey{
		credentials.OpenAI: {File: s.LLM.APIKeyFile, Value: s.LLM.APIKey},
		credentials.Flickr: {File: s.Images.Flickr.APIKeyFile, Value: s.Images.Flickr.APIKey},
		credentials.Pexels: {File: s.Images.Pexels.APIKeyFile, Value: s.Images.Pexels.APIKey},
	}
}

// registryFromSettings applies configured delays and endpoints to the built-in sources.
func registryFromSettings(s *conf.ImageSettings, client *httpclient.Client, log logger.Logger) (*imageprovider.Registry, error) {
	registry := imageprovider.DefaultRegistry()
	base := imageprovider.Options{HTTPClient: client, Logger: log}

	openai := base
	openai.ImageModel = s.OpenAI.Model
	openai.ImageSize = s.OpenAI.Size
	flickr := base
	flickr.BaseURL = s.Flickr.BaseURL
	pexels := base
	pexels.BaseURL = s.Pexels.BaseURL
	foodish := base
	foodish.BaseURL = s.Foodish.BaseURL

	for _, c := range []struct {
		source imageprovider.Source
		delay  time.Duration
		opts   imageprovider.Options
	}{
		{imageprovider.SourceOpenAI, s.Delays.OpenAI, openai},
		{imageprovider.SourceFlickr, s.Delays.Flickr, flickr},
		{imageprovider.SourcePexels, s.Delays.Pexels, pexels},
		{imageprovider.SourceFoodish, s.Delays.Foodish, foodish},
	} {
		if err := registry.Configure(c.source, c.delay, c.opts); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

type noInlineMetrics struct{}

func (noInlineMetrics) RecordInline(bool) {}
