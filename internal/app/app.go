// Package app assembles the application from configuration: sources,
// pipeline, scheduler, and the optional bot.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"VCScanner/internal/classify"
	"VCScanner/internal/config"
	"VCScanner/internal/infrastructure/bot"
	"VCScanner/internal/infrastructure/storage"
	"VCScanner/internal/infrastructure/telegram"
	"VCScanner/internal/infrastructure/webpreview"
	"VCScanner/internal/parser"
	"VCScanner/internal/patterns"
	"VCScanner/internal/source"
	"VCScanner/internal/usecase"
)

// App owns all long-lived components and their shutdown order.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.SQLiteStore
	mtproto   *telegram.Client
	scheduler *usecase.Scheduler
	bot       *bot.Bot
}

// New builds the full component graph. Telegram MTProto is only wired when
// API credentials are present; the web preview strategy is always available.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := storage.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	registry := source.NewRegistry()
	registry.Register("webpreview", webpreview.NewScanner(nil))

	var mtproto *telegram.Client
	if cfg.Telegram.APIID != 0 && cfg.Telegram.APIHash != "" {
		mtproto = telegram.NewClient(cfg.Telegram, logger)
		registry.Register("mtproto", mtproto)
	} else {
		logger.Warn("telegram credentials missing, mtproto strategy unavailable")
	}

	lib := patterns.Default()
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:     registry,
		Detector:     parser.NewDetector(lib),
		Extractor:    parser.NewExtractor(lib),
		Classifier:   classify.New(lib),
		Store:        store,
		Channels:     cfg.Channels,
		MessageLimit: cfg.Scanner.MessageLimit,
		FetchDelay:   cfg.Scanner.FetchDelay(),
		Logger:       logger,
	})

	scheduler := usecase.NewScheduler(pipeline, cfg.Scanner.ScanInterval(), cfg.Scanner.TickInterval(), logger)

	var commandBot *bot.Bot
	if cfg.Bot.Enabled {
		commandBot, err = bot.New(cfg.Bot.Token, pipeline, store, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create bot: %w", err)
		}
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		mtproto:   mtproto,
		scheduler: scheduler,
		bot:       commandBot,
	}, nil
}

// Run starts the background components and blocks until the context is
// cancelled or the bot update loop exits.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	if a.mtproto != nil {
		errCh := make(chan error, 1)
		go func() {
			errCh <- a.mtproto.Run(ctx, a.cfg.Telegram.Phone)
		}()
		select {
		case <-a.mtproto.Ready:
		case err := <-errCh:
			return fmt.Errorf("telegram client: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	if a.bot != nil {
		return a.bot.Start(ctx)
	}

	<-ctx.Done()
	a.logger.Info("shutting down")
	return nil
}
