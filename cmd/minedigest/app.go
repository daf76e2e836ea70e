package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/config"
	"github.com/verte-zerg/minedigest/internal/deliver"
	"github.com/verte-zerg/minedigest/internal/digest"
	"github.com/verte-zerg/minedigest/internal/ledger"
	"github.com/verte-zerg/minedigest/internal/lock"
	"github.com/verte-zerg/minedigest/internal/logging"
	"github.com/verte-zerg/minedigest/internal/model"
	"github.com/verte-zerg/minedigest/internal/notify"
	"github.com/verte-zerg/minedigest/internal/render"
	"github.com/verte-zerg/minedigest/internal/source"
	"github.com/verte-zerg/minedigest/internal/stats"
)

type runMode int

const (
	modeSend runMode = iota
	modeDryRun
	modeReadOnly
)

var errReadOnly = errors.New("delivery disabled in read-only commands")

// readOnlyDeliverer backs commands that must never send.
type readOnlyDeliverer struct{}

func (readOnlyDeliverer) Deliver(context.Context, model.Digest) error {
	return errReadOnly
}

type app struct {
	settings config.Settings
	logger   *log.Logger
	source   *source.Reader
	ledger   *ledger.SQLite
	engine   *digest.Engine
	notifier *notify.Notifier
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings := config.Defaults()
	if err := settings.ApplyFile(fileCfg); err != nil {
		return config.Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	settings.ApplyEnv(os.Getenv)
	if err := settings.ApplyLegacy(config.LegacyConfigName); err != nil {
		return config.Settings{}, fmt.Errorf("failed to load legacy config: %w", err)
	}
	settings.ResolveDBPath()

	applyStringConfig(cmd, "log-level", &logLevel, &settings.LogLevel)
	settings.LogLevel = logLevel
	applyIntConfig(cmd, "max-days-back", &maxDaysBack, &settings.MaxDaysBack)
	settings.MaxDaysBack = maxDaysBack
	return settings, nil
}

func newLogger(cmd *cobra.Command, settings config.Settings) (*log.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), settings.LogLevel, verbose)
}

func openApp(cmd *cobra.Command, mode runMode) (*app, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(mode == modeSend); err != nil {
		if isMissingConfig(err) {
			logErrf("Set it in %s (run: minedigest config) or via the environment.\n", configPath)
		}
		return nil, err
	}
	policy, err := digest.ParseOutagePolicy(settings.OnUnavailable)
	if err != nil {
		return nil, fmt.Errorf("invalid report.on_unavailable: %w", err)
	}
	logger, err := newLogger(cmd, settings)
	if err != nil {
		return nil, err
	}

	src, err := source.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	markers, err := ledger.Open(settings.LedgerPath)
	if err != nil {
		if cerr := src.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	runID := uuid.NewString()
	cal := calendar.New(time.Local)
	deliverer, err := newDeliverer(mode, settings)
	if err != nil {
		closeAll(src, markers)
		return nil, err
	}
	cfg := digest.Config{
		Ledger:          markers.WithRunID(runID),
		Stats:           stats.NewAggregator(src, logger),
		Streak:          stats.NewStreakCalculator(src, cal),
		Trend:           stats.NewTrendBuilder(src, cal),
		Renderer:        render.New(settings.Title, ""),
		Deliverer:       deliverer,
		Calendar:        cal,
		Logger:          logger,
		RunID:           runID,
		Policy:          policy,
		TrendDays:       settings.TrendDays,
		DeliveryTimeout: settings.Timeout,
		DryRun:          mode == modeDryRun,
	}
	lockPath := "none"
	if mode != modeReadOnly {
		locker := lock.New(config.LockPathFor(settings.LedgerPath))
		cfg.Locker = locker
		lockPath = locker.Path()
	}
	engine, err := digest.New(cfg)
	if err != nil {
		closeAll(src, markers)
		return nil, err
	}
	logger.Debug("configured",
		"db", settings.DBPath,
		"ledger", settings.LedgerPath,
		"lock", lockPath,
		"policy", policy,
		"dry_run", mode == modeDryRun,
	)
	return &app{
		settings: settings,
		logger:   logger,
		source:   src,
		ledger:   markers,
		engine:   engine,
		notifier: notify.New(settings.NotifyOnFailure),
	}, nil
}

func newDeliverer(mode runMode, settings config.Settings) (digest.Deliverer, error) {
	switch mode {
	case modeSend:
		return deliver.NewWebhook(settings.WebhookURL, settings.Username, settings.Timeout), nil
	case modeDryRun:
		if sendOut == "" {
			return nil, fmt.Errorf("--out must not be empty")
		}
		return deliver.NewDir(sendOut, settings.Username), nil
	default:
		return readOnlyDeliverer{}, nil
	}
}

func (a *app) notifyFailure(failed, unavailable []string) {
	if err := a.notifier.Failure(failed, unavailable); err != nil {
		a.logger.Warn("desktop notification failed", "err", err)
	}
}

func (a *app) close() {
	closeAll(a.source, a.ledger)
}

func closeAll(src *source.Reader, markers *ledger.SQLite) {
	if cerr := markers.Close(); cerr != nil {
		logErrf("failed to close ledger: %v\n", cerr)
	}
	if cerr := src.Close(); cerr != nil {
		logErrf("failed to close event store: %v\n", cerr)
	}
}
