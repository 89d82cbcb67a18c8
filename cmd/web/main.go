package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/myrjola/nextlift/internal/envstruct"
	"github.com/myrjola/nextlift/internal/errors"
	"github.com/myrjola/nextlift/internal/flightrecorder"
	"github.com/myrjola/nextlift/internal/logging"
	"github.com/myrjola/nextlift/internal/metrics"
	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/report"
	"github.com/myrjola/nextlift/internal/sqlite"
	"github.com/myrjola/nextlift/internal/training"
)

type application struct {
	logger          *slog.Logger
	templateFS      fs.FS
	trainingService *training.Service
	renderer        *report.Renderer
	metrics         *metrics.Manager
	registry        *prometheus.Registry
	defaults        requestDefaults
	// flightRecorder is nil unless a traces directory is configured.
	flightRecorder *flightrecorder.Recorder
}

// requestDefaults apply when a request leaves out the lifter's age or training phase.
type requestDefaults struct {
	age   int
	phase recommend.Phase
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"NEXTLIFT_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"NEXTLIFT_SQLITE_URL" envDefault:"./nextlift.sqlite3"`
	// TemplatePath overrides the embedded HTML templates with a directory on disk.
	TemplatePath string `env:"NEXTLIFT_TEMPLATE_PATH" envDefault:""`
	// CatalogPath is an optional YAML file overriding the exercise configuration.
	CatalogPath string `env:"NEXTLIFT_CATALOG_PATH" envDefault:""`
	// DefaultAge is used when a request has no age parameter.
	DefaultAge int `env:"NEXTLIFT_DEFAULT_AGE" envDefault:"30"`
	// DefaultPhase is used when a request has no phase parameter.
	DefaultPhase string `env:"NEXTLIFT_DEFAULT_PHASE" envDefault:"hypertrophy"`
	// TracesDirectory enables the flight recorder. Timed out requests dump an execution trace there.
	TracesDirectory string `env:"NEXTLIFT_TRACES_DIRECTORY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var templateFS fs.FS
	if templateFS, err = resolveTemplateFS(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve templates", slog.String("path", cfg.TemplatePath))
	}

	catalog := recommend.DefaultCatalog()
	if cfg.CatalogPath != "" {
		if catalog, err = recommend.LoadCatalogFile(cfg.CatalogPath); err != nil {
			return errors.Wrap(err, "load exercise catalog", slog.String("path", cfg.CatalogPath))
		}
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	registry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("nextlift", "server", registry)

	app := application{
		logger:          logger,
		templateFS:      templateFS,
		trainingService: training.NewService(db, recommend.NewEngine(catalog, logger), metricsManager, logger),
		renderer:        report.NewRenderer(),
		metrics:         metricsManager,
		registry:        registry,
		defaults: requestDefaults{
			age:   cfg.DefaultAge,
			phase: recommend.ParsePhase(cfg.DefaultPhase),
		},
		flightRecorder: nil,
	}

	if cfg.TracesDirectory != "" {
		if app.flightRecorder, err = flightrecorder.New(
			flightrecorder.Config{MinAge: 0, MaxBytes: 0, Cooldown: 0, Directory: cfg.TracesDirectory}, logger,
		); err != nil {
			return errors.Wrap(err, "create flight recorder")
		}
		if err = app.flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer app.flightRecorder.Stop(context.WithoutCancel(ctx))
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	level, levelErr := logging.ParseLevel(os.Getenv("NEXTLIFT_LOG_LEVEL"))
	logger := logging.NewLogger(os.Stdout, level)
	if levelErr != nil && os.Getenv("NEXTLIFT_LOG_LEVEL") != "" {
		logger.LogAttrs(ctx, slog.LevelWarn, "invalid log level, using info", errors.SlogError(levelErr))
	}
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
