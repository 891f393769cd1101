package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsRobot/internal/config"
	"NewsRobot/internal/infrastructure/bookmarks"
	"NewsRobot/internal/infrastructure/feed"
	"NewsRobot/internal/infrastructure/httpapi"
	"NewsRobot/internal/infrastructure/llm"
	"NewsRobot/internal/infrastructure/scheduler"
	"NewsRobot/internal/infrastructure/storage"
	"NewsRobot/internal/infrastructure/wordpress"
	"NewsRobot/internal/logging"
	"NewsRobot/internal/newsletter"
	"NewsRobot/internal/ports"
	"NewsRobot/internal/scanner"
	"NewsRobot/internal/selector"
	"NewsRobot/internal/usecase"
)

// Application wires configuration to adapters, the weekly pipeline, the cron
// schedule and the HTTP trigger surface.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.SQLiteStore
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *httpapi.Server
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewRSSScanner(nil))
	registry.Register(feed.NewHTMLScanner(nil))

	source := feed.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))
	loader := bookmarks.NewLoader(cfg.BookmarksPath, baseLogger.With("component", "bookmarks"))

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open seen store: %w", err)
	}

	var writer ports.NewsletterWriter
	if cfg.ChatGPT.APIKey != "" {
		writer = llm.NewChatGPTWriter(cfg.ChatGPT, cfg.Newsletter.TitlePrefix)
	} else {
		baseLogger.Warn("chatgpt api key not set, using template writer")
		writer = &newsletter.TemplateWriter{TitlePrefix: cfg.Newsletter.TitlePrefix}
	}

	publisher := wordpress.NewClient(cfg.WordPress, baseLogger.With("component", "wordpress"))

	sel := selector.New()
	if cfg.Newsletter.MaxArticles > 0 {
		sel.MaxTotal = cfg.Newsletter.MaxArticles
	}
	if cfg.Newsletter.MaxPerTopic > 0 {
		sel.MaxPerTopic = cfg.Newsletter.MaxPerTopic
	}
	sel.WordBoundary = cfg.Newsletter.Matching == "word"

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		Bookmarks: loader,
		Seen:      store,
		Writer:    writer,
		Publisher: publisher,
		Topics:    cfg.TopicRules(),
		Selector:  sel,
		SeenTTL:   time.Duration(cfg.Storage.SeenTTLDays) * 24 * time.Hour,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	server := httpapi.NewServer(cfg, pipeline, loader, store, baseLogger.With("component", "http"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		pipeline:  pipeline,
		scheduler: sched,
		server:    server,
	}, nil
}

// Run starts the cron schedule and the HTTP server and blocks until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	srv := a.server.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.shutdown(srv)
			return fmt.Errorf("http server: %w", err)
		}
	}

	a.shutdown(srv)
	return nil
}

func (a *Application) shutdown(srv *http.Server) {
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(stopCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Error("scheduler stop", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("store close", "error", err)
	}
}
