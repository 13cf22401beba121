// Package app provides the top-level application lifecycle management for
// the empire bot. It wires together the optional redis cache, the hints
// provider chain, the per-account game clients, and the fleet runner, and
// blocks until the fleet finishes or the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"

	rediscache "github.com/paveL1boyko/MuskEmpireBot/internal/cache/redis"
	"github.com/paveL1boyko/MuskEmpireBot/internal/config"
	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
	"github.com/paveL1boyko/MuskEmpireBot/internal/fleet"
	"github.com/paveL1boyko/MuskEmpireBot/internal/hints"
	"github.com/paveL1boyko/MuskEmpireBot/internal/platform/empire"
	"github.com/paveL1boyko/MuskEmpireBot/internal/session"
	"github.com/paveL1boyko/MuskEmpireBot/internal/upgrade"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the fleet,
// and blocks until every session has stopped or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Int("accounts", len(a.cfg.Accounts)),
		slog.String("log_level", a.cfg.LogLevel),
	)

	hintProvider, err := a.wireHints(ctx)
	if err != nil {
		return fmt.Errorf("app: wire hints: %w", err)
	}

	runner := fleet.New(a.accounts(), a.sessionFactory(hintProvider), fleet.Config{
		StaggerMin: a.cfg.Session.StaggerMin.Duration,
		StaggerMax: a.cfg.Session.StaggerMax.Duration,
		Proxies:    a.cfg.Proxies,
	}, a.logger)

	return runner.Run(ctx)
}

// wireHints builds the hints provider chain: the HTTP feed, optionally
// behind the shared redis cache. A redis connection failure is fatal only
// when redis is explicitly enabled.
func (a *App) wireHints(ctx context.Context) (hints.Provider, error) {
	feed := hints.NewFeedProvider(a.cfg.Api.HintsURL, a.logger)

	var cache hints.Cache
	if a.cfg.Redis.Enabled {
		client, err := rediscache.New(ctx, rediscache.ClientConfig{
			Addr:       a.cfg.Redis.Addr,
			Password:   a.cfg.Redis.Password,
			DB:         a.cfg.Redis.DB,
			PoolSize:   a.cfg.Redis.PoolSize,
			MaxRetries: a.cfg.Redis.MaxRetries,
			TLSEnabled: a.cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				a.logger.Warn("redis close failed", slog.String("error", err.Error()))
			}
		})
		cache = rediscache.NewHintsCache(client)
	}
	return hints.NewCached(feed, cache, a.logger), nil
}

func (a *App) accounts() []domain.Account {
	out := make([]domain.Account, 0, len(a.cfg.Accounts))
	for _, acc := range a.cfg.Accounts {
		out = append(out, domain.Account{Name: acc.Name, InitData: acc.InitData})
	}
	return out
}

// sessionFactory builds one orchestrator per account, each with its own game
// client and assigned proxy.
func (a *App) sessionFactory(hintProvider hints.Provider) fleet.Factory {
	sessionCfg := session.Config{
		TapsEnabled:      a.cfg.Taps.Enabled,
		TapsPerSecondMin: a.cfg.Taps.PerSecondMin,
		TapsPerSecondMax: a.cfg.Taps.PerSecondMax,
		PvpEnabled:       a.cfg.Pvp.Enabled,
		PvpLeague:        a.cfg.Pvp.League,
		PvpStrategy:      a.cfg.Pvp.Strategy,
		PvpCount:         a.cfg.Pvp.Count,
		InvestEnabled:    a.cfg.Invest.Enabled,
		MoneyToSave:      a.cfg.Upgrades.MoneyToSave,
		SkillWeightMin:   a.cfg.Upgrades.MinWeight,
		SkipTitles:       a.cfg.Upgrades.SkipTitles,
		Mining: upgrade.MiningPolicy{
			Enabled:        a.cfg.Upgrades.Mining.Enabled,
			MaxLevel:       a.cfg.Upgrades.Mining.MaxLevel,
			MaxEnergyLevel: a.cfg.Upgrades.Mining.MaxEnergyLevel,
			MaxCost:        a.cfg.Upgrades.Mining.MaxCost,
			EnergySkills:   a.cfg.Upgrades.Mining.EnergySkills,
		},
		ErrorThreshold: a.cfg.Session.ErrorThreshold,
		SleepMin:       a.cfg.Session.SleepMin.Duration,
		SleepMax:       a.cfg.Session.SleepMax.Duration,
		PaceMin:        a.cfg.Session.PaceMin.Duration,
		PaceMax:        a.cfg.Session.PaceMax.Duration,
	}

	return func(account domain.Account, proxyURL string) (fleet.Session, error) {
		client, err := empire.NewClient(empire.ClientConfig{
			BaseURL:  a.cfg.Api.BaseURL,
			InitData: account.InitData,
			ProxyURL: proxyURL,
			Timeout:  a.cfg.Api.Timeout.Duration,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("app: build client for %s: %w", account.Name, err)
		}
		return session.New(account.Name, client, hintProvider, sessionCfg, a.logger), nil
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
