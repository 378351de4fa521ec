package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpapp "github.com/pmarkun/editaisparticipativos/internal/app/http"
	"github.com/pmarkun/editaisparticipativos/internal/config"
	"github.com/pmarkun/editaisparticipativos/internal/handlers"
	"github.com/pmarkun/editaisparticipativos/internal/jobs"
	"github.com/pmarkun/editaisparticipativos/internal/lib/challenge"
	"github.com/pmarkun/editaisparticipativos/internal/lib/metrics"
	"github.com/pmarkun/editaisparticipativos/internal/notify"
	"github.com/pmarkun/editaisparticipativos/internal/services/calls"
	"github.com/pmarkun/editaisparticipativos/internal/services/report"
	"github.com/pmarkun/editaisparticipativos/internal/services/voting"
	"github.com/pmarkun/editaisparticipativos/internal/storage/migrations"
	"github.com/pmarkun/editaisparticipativos/internal/storage/postgres"
	"github.com/pmarkun/editaisparticipativos/internal/storage/sqlite"
	"github.com/pmarkun/editaisparticipativos/internal/storage/sqlstore"
)

type App struct {
	HTTPServer *httpapp.App
	Voting     *voting.Voting
	Calls      *calls.Calls
	Reports    *report.Reports

	log      *slog.Logger
	storage  *sqlstore.Storage
	exporter *metrics.Exporter
	jobs     *jobs.Manager
}

// OpenStorage migrates the schema and opens the configured database.
func OpenStorage(cfg config.StorageConfig) (*sqlstore.Storage, error) {
	const op = "app.OpenStorage"

	if err := migrations.Up(cfg.Driver, cfg.DSN); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		s   *sqlstore.Storage
		err error
	)
	switch cfg.Driver {
	case migrations.DriverPostgres:
		s, err = postgres.New(cfg.DSN)
	case migrations.DriverSQLite:
		s, err = sqlite.New(cfg.DSN)
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func newNotifier(log *slog.Logger, cfg config.NotifierConfig) voting.Notifier {
	if cfg.Kind == "smtp" {
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	return notify.NewLogNotifier(log)
}

func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.NewApp"

	storage, err := OpenStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exporter, err := metrics.NewPrometheus()
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	challenges := challenge.NewIssuer(cfg.Challenge.Secret, cfg.Challenge.TTL)

	votingService := voting.New(
		log,
		storage,
		storage,
		storage,
		storage,
		newNotifier(log, cfg.Notifier),
		challenges,
		exporter.Metrics,
		voting.Config{
			PublicBaseURL: cfg.PublicBaseURL,
			NotifyTimeout: cfg.Notifier.Timeout,
		},
	)
	callsService := calls.New(log, storage, storage, time.Now)
	reportService := report.New(log, storage, storage, storage, time.Now)

	manager, err := jobs.NewManager(log)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	phaseWatch := jobs.NewPhaseWatchJob(log, storage, exporter.Metrics, cfg.Scheduler.PhaseWatchInterval, time.Now)
	if err := manager.Register(phaseWatch); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpApp := httpapp.NewApp(log, httpapp.Options{
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AdminKey:       cfg.AdminKey,
	}, httpapp.Handlers{
		Voting:  handlers.NewVotingHandler(log, votingService, challenges, time.Now),
		Calls:   handlers.NewCallsHandler(callsService),
		Reports: handlers.NewReportHandler(reportService),
		Metrics: exporter.Handler,
	})

	return &App{
		HTTPServer: httpApp,
		Voting:     votingService,
		Calls:      callsService,
		Reports:    reportService,
		log:        log,
		storage:    storage,
		exporter:   exporter,
		jobs:       manager,
	}, nil
}

// StartJobs starts the background scheduler.
func (a *App) StartJobs() {
	a.jobs.Start()
}

// Stop shuts down the HTTP server first, then background jobs, metrics and
// the database. Every step runs even if an earlier one fails.
func (a *App) Stop(ctx context.Context) error {
	var errs []error

	if err := a.HTTPServer.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.jobs.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := a.exporter.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.storage.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
