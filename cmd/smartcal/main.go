package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexanderramin/smartcal/internal/cli"
	"github.com/alexanderramin/smartcal/internal/config"
	"github.com/alexanderramin/smartcal/internal/db"
	"github.com/alexanderramin/smartcal/internal/extract"
	"github.com/alexanderramin/smartcal/internal/llm"
	"github.com/alexanderramin/smartcal/internal/selection"
	"github.com/alexanderramin/smartcal/internal/service"
	"github.com/alexanderramin/smartcal/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Exit(1)
	}
	closer.Close()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	events := store.NewEventStore(backend, logger.Named("store"))
	events.Load()
	closer.Bind(events.Flush)

	observer := llm.Observer(llm.NoopObserver{})
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(logger.Named("llm"))
	}
	chat := llm.NewChatClient(llm.Config{
		Endpoint:       cfg.LLM.Endpoint,
		Model:          cfg.LLM.Model,
		Timeout:        cfg.LLM.Timeout,
		MaxRetries:     cfg.LLM.MaxRetries,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		ProbeMaxTokens: llm.DefaultConfig().ProbeMaxTokens,
	}, observer)

	extractor := extract.NewClient(extract.Options{
		Chat:           chat,
		Credentials:    extract.NewCredentialStore(cfg.CredentialFile),
		Pool:           extract.NewPool(cfg.LLM.Workers),
		Log:            logger.Named("extract"),
		ProbeMaxTokens: llm.DefaultConfig().ProbeMaxTokens,
	})
	closer.Bind(extractor.Close)

	calendar := service.NewCalendarService(events, extractor,
		service.NewLogUseCaseObserver(logger.Named("service")))

	app := &cli.App{
		Calendar:       calendar,
		WatchInterval:  cfg.Watcher.Interval,
		WatchMinLength: cfg.Watcher.MinLength,
		CalendarName:   "smartcal",
		IsInteractive:  func() bool { return cli.StdinIsTerminal(os.Stdin.Fd()) },
	}
	if src := selection.NewClipboardSource(); src.Available() {
		app.Selection = src
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func openBackend(cfg *config.Config) (store.Backend, error) {
	if cfg.Store.Backend != config.BackendSQLite {
		return store.NewJSONFileBackend(cfg.EventsFile), nil
	}
	database, err := db.OpenDB(cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	closer.Bind(func() {
		_ = database.Close()
	})
	return store.NewSQLiteBackend(database, "default"), nil
}

func initLogger(cfg config.LogConfig) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var conf zap.Config
	if cfg.Format == "json" {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	conf.Level = zap.NewAtomicLevelAt(level)
	conf.OutputPaths = []string{"stderr"}

	logger, err := conf.Build()
	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
