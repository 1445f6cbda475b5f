// Package app assembles the gateway pipeline from configuration.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/skyhook-labs/cloudgate/internal/audit"
	"github.com/skyhook-labs/cloudgate/internal/notifier"
	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/skyhook-labs/cloudgate/pkg/gateway"
	"github.com/skyhook-labs/cloudgate/pkg/gateway/policy"
	"github.com/skyhook-labs/cloudgate/pkg/runner"
)

// App is the assembled set of provider gateways plus their shared
// collaborators. Immutable after Build.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Gateways map[gateway.Provider]*gateway.Gateway

	auditLog io.Closer
}

// NewLogger builds the process logger the way the configuration asks for.
func NewLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JsonLogs {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Build constructs one gateway per provider: shared rules engine and audit
// sink, per-provider runner (each carries its own default-region/project
// environment). Callers own Close.
func Build(cfg config.Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = NewLogger(cfg)
	}

	rules, err := policy.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy rules: %w", err)
	}
	if rules != nil {
		logger.Info("dynamic policy rules loaded", "count", rules.Size(), "file", cfg.RulesFile)
	}

	auditLog, err := audit.Open(cfg.AuditLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	opts := []gateway.Option{
		gateway.WithAudit(auditLog),
		gateway.WithLogger(logger),
	}
	if cfg.SlackWebhook != "" {
		opts = append(opts, gateway.WithNotifier(notifier.NewSlackClient(cfg.SlackWebhook, logger)))
	}

	gateways := make(map[gateway.Provider]*gateway.Gateway, 3)
	for _, p := range gateway.Providers() {
		desc := gateway.DescriptorFor(p, cfg)
		run := runner.New(cfg.Timeout, cfg.MaxOutputKB,
			runner.WithEnv(desc.ExtraEnv...),
			runner.WithLogger(logger),
		)
		gateways[p] = gateway.New(desc, run, rules, opts...)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Gateways: gateways,
		auditLog: auditLog,
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.auditLog != nil {
		return a.auditLog.Close()
	}
	return nil
}
