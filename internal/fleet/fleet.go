// Package fleet runs one session per account concurrently. Sessions are
// fully independent: a fatal session error is logged and swallowed so
// siblings keep running, and only context cancellation stops the fleet.
package fleet

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

// Session is one account's runnable orchestrator.
type Session interface {
	Name() string
	Run(ctx context.Context) error
}

// Factory builds the session for an account. proxyURL is empty when the
// proxy pool has run dry or was never configured.
type Factory func(account domain.Account, proxyURL string) (Session, error)

// Config tunes fleet start-up.
type Config struct {
	// StaggerMin/StaggerMax bound the random per-account launch delay.
	// Delays accumulate so account i starts roughly i delays after the
	// first, avoiding synchronized bursts against the game API.
	StaggerMin time.Duration
	StaggerMax time.Duration
	// Proxies are assigned round-robin across accounts.
	Proxies []string
}

// Runner owns the account list and fans the sessions out.
type Runner struct {
	accounts []domain.Account
	factory  Factory
	cfg      Config
	logger   *slog.Logger

	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Runner over the given accounts.
func New(accounts []domain.Account, factory Factory, cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		accounts: accounts,
		factory:  factory,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "fleet")),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    waitFor,
	}
}

// Run starts every account's session and blocks until all of them finish or
// the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var stagger time.Duration
	for i, account := range r.accounts {
		if i > 0 {
			stagger += r.randDuration(r.cfg.StaggerMin, r.cfg.StaggerMax)
		}
		delay := stagger
		proxyURL := r.proxyFor(i)
		account := account

		g.Go(func() error {
			if err := r.sleep(ctx, delay); err != nil {
				return nil
			}
			log := r.logger.With(slog.String("account", account.Name))
			session, err := r.factory(account, proxyURL)
			if err != nil {
				log.Error("session setup failed", slog.String("error", err.Error()))
				return nil
			}
			log.Info("session starting",
				slog.Duration("stagger", delay),
				slog.String("proxy", proxyURL))
			if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("session stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}
	return g.Wait()
}

// proxyFor assigns proxies round-robin, empty when no pool is configured.
func (r *Runner) proxyFor(i int) string {
	if len(r.cfg.Proxies) == 0 {
		return ""
	}
	return r.cfg.Proxies[i%len(r.cfg.Proxies)]
}

func (r *Runner) randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.rng.Int63n(int64(max-min)))
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
