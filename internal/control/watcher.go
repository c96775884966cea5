package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/nodewatch/internal/core/config"
	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/infra/probe"
	"github.com/vietddude/nodewatch/internal/infra/telegram"
	"github.com/vietddude/nodewatch/internal/monitoring/health"
	"github.com/vietddude/nodewatch/internal/monitoring/report"
	"github.com/vietddude/nodewatch/internal/monitoring/schedule"
)

// Watcher is the main application struct that manages the bot lifecycle.
type Watcher struct {
	cfg          Config
	aggregator   *report.Aggregator
	schedules    *schedule.Manager
	bot          *telegram.Bot
	healthServer *health.Server
	log          *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Port             int
	ReportCacheTTL   time.Duration
	Endpoints        []domain.Endpoint
	Threshold        time.Duration
	UpdateInterval   time.Duration
	ProbeTimeout     time.Duration
	MaxConcurrency   int
	Token            string
	ChannelID        string
	SubscribeChannel bool
}

// ConfigFrom flattens the loaded configuration and reads the endpoint list.
func ConfigFrom(cfg *config.AppConfig) (Config, error) {
	endpoints, err := config.LoadEndpoints(cfg.Nodes)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:             cfg.Server.Port,
		ReportCacheTTL:   cfg.Server.ReportCacheTTL,
		Endpoints:        endpoints,
		Threshold:        cfg.Monitor.ThresholdDuration(),
		UpdateInterval:   cfg.Monitor.Interval(),
		ProbeTimeout:     cfg.Probe.Timeout,
		MaxConcurrency:   cfg.Probe.MaxConcurrency,
		Token:            cfg.Telegram.Token,
		ChannelID:        cfg.Telegram.ChannelID,
		SubscribeChannel: cfg.Telegram.SubscribeChannel,
	}, nil
}

// NewAggregator builds the probe and report pipeline without any transport.
func NewAggregator(cfg Config) *report.Aggregator {
	prober := probe.NewHTTPProber(cfg.ProbeTimeout)
	return report.NewAggregator(report.Config{
		Endpoints:      cfg.Endpoints,
		Threshold:      cfg.Threshold,
		MaxConcurrency: cfg.MaxConcurrency,
	}, prober)
}

// NewWatcher connects to Telegram and wires every component.
func NewWatcher(cfg Config) (*Watcher, error) {
	api, err := telegram.Connect(cfg.Token)
	if err != nil {
		return nil, err
	}

	aggregator := NewAggregator(cfg)
	notifier := telegram.NewNotifier(api)
	schedules := schedule.NewManager(aggregator, notifier, cfg.UpdateInterval)
	commands := NewCommands(schedules, notifier)

	return &Watcher{
		cfg:          cfg,
		aggregator:   aggregator,
		schedules:    schedules,
		bot:          telegram.NewBot(api, api.Self.UserName, commands),
		healthServer: health.NewServer(report.NewCache(aggregator, cfg.ReportCacheTTL), schedules, cfg.Port),
		log:          slog.Default(),
	}, nil
}

// Start starts all components.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("Starting Watcher...",
		"endpoints", len(w.cfg.Endpoints),
		"threshold", w.cfg.Threshold,
		"interval", w.cfg.UpdateInterval,
	)

	// Start Health Server
	go func() {
		if err := w.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.log.Error("Health server failed", "error", err)
		}
	}()

	go w.bot.Run(ctx)

	if w.cfg.SubscribeChannel {
		if w.cfg.ChannelID == "" {
			return fmt.Errorf("%w: subscribe_channel set without channel_id", config.ErrInvalidConfig)
		}
		if _, err := w.schedules.Subscribe(domain.SubscriberID(w.cfg.ChannelID)); err != nil {
			return fmt.Errorf("subscribe default channel: %w", err)
		}
	}

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop(ctx context.Context) error {
	w.log.Info("Stopping Watcher...")

	// Stop auto-report schedules
	if err := w.schedules.Stop(ctx); err != nil {
		w.log.Warn("Schedules did not stop in time", "error", err)
	}

	// Stop Health Server
	return w.healthServer.Stop(ctx)
}
