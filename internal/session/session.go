// Package session drives one account through the cycle state machine:
// authenticate, sync, run the ordered action list, sleep, repeat. Each
// orchestrator owns its snapshot, client, and error counter exclusively;
// sessions never share mutable state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
	"github.com/paveL1boyko/MuskEmpireBot/internal/hints"
	"github.com/paveL1boyko/MuskEmpireBot/internal/upgrade"
)

// State is the orchestrator's position in the cycle state machine.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateSynced
	StateActing
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateSynced:
		return "synced"
	case StateActing:
		return "acting"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// GameClient is the game API surface the orchestrator consumes. The empire
// package provides the production implementation.
type GameClient interface {
	Login(ctx context.Context) error
	FetchDatabase(ctx context.Context) (*domain.Database, error)
	FetchProfile(ctx context.Context) (*domain.Profile, error)
	SyncBalance(ctx context.Context) (domain.Hero, domain.Energy, error)
	ClaimOfflineBonus(ctx context.Context) error
	ClaimDailyReward(ctx context.Context, index int) error
	ClaimQuest(ctx context.Context, key string) error
	DailyQuestProgress(ctx context.Context) (map[string]domain.QuestState, error)
	ClaimDailyQuest(ctx context.Context, quest, code string) error
	SolveRebus(ctx context.Context, key, answer string) (bool, error)
	ClaimAllyBonus(ctx context.Context, allyID int64) error
	Tap(ctx context.Context, amount int64, seconds int, energyRemaining int64) (int64, error)
	OpenFundStakes(ctx context.Context) ([]domain.FundStake, error)
	Invest(ctx context.Context, fund string, amount int64) error
	PvpInfo(ctx context.Context) error
	PvpFight(ctx context.Context, league, strategy string) (*domain.Fight, error)
	PvpClaim(ctx context.Context) error
	BuySkill(ctx context.Context, key string) error
}

// Config is the immutable per-session tuning. It never changes during a run;
// run-scoped toggles live in FeatureState.
type Config struct {
	TapsEnabled      bool
	TapsPerSecondMin int
	TapsPerSecondMax int

	PvpEnabled  bool
	PvpLeague   string
	PvpStrategy string
	PvpCount    int

	InvestEnabled bool

	MoneyToSave    int64
	SkillWeightMin float64
	SkipTitles     []string
	Mining         upgrade.MiningPolicy

	ErrorThreshold int

	SleepMin time.Duration
	SleepMax time.Duration
	PaceMin  time.Duration
	PaceMax  time.Duration
}

// tapsExhaustedPause is how long tapping stays off after the game reports
// the hero needs rest.
const tapsExhaustedPause = 3 * time.Hour

// FeatureState is the run-scoped mutable state, reset or adjusted as cycles
// discover what the account can do. It is distinct from Config.
type FeatureState struct {
	PvpDisabled       bool
	PvpDisabledReason string
	TapsPausedUntil   time.Time
	NeedQuiz          bool
	NeedRebus         bool
	RebusKey          string
	RebusAnswer       string
}

// Orchestrator runs the cycle state machine for one account.
type Orchestrator struct {
	name   string
	client GameClient
	hints  hints.Provider
	cfg    Config
	logger *slog.Logger

	state    State
	features FeatureState
	db       *domain.Database
	profile  *domain.Profile

	rng   *rand.Rand
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds an Orchestrator for one account.
func New(name string, client GameClient, hintProvider hints.Provider, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		name:   name,
		client: client,
		hints:  hintProvider,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "session"), slog.String("account", name)),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		sleep:  waitFor,
	}
}

// Name returns the account name this session drives.
func (o *Orchestrator) Name() string {
	return o.name
}

// Run executes cycles until the context is cancelled, the account fails
// authentication, or the consecutive-error threshold is reached. Only those
// three conditions end a session.
func (o *Orchestrator) Run(ctx context.Context) error {
	retry := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Minute),
		backoff.WithMaxInterval(30*time.Minute),
		backoff.WithMaxElapsedTime(0),
	)
	errCount := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := o.cycle(ctx)
		switch {
		case err == nil:
			errCount = 0
			retry.Reset()
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, domain.ErrUnauthorized):
			o.setState(StateLoggedOut)
			return fmt.Errorf("session %s: authentication failed: %w", o.name, err)
		default:
			errCount++
			o.logger.Warn("cycle failed",
				slog.Int("consecutive_errors", errCount),
				slog.String("error", err.Error()))
			if o.cfg.ErrorThreshold > 0 && errCount >= o.cfg.ErrorThreshold {
				o.setState(StateLoggedOut)
				return fmt.Errorf("session %s: stopping after %d consecutive errors: %w", o.name, errCount, err)
			}
			o.setState(StateLoggedOut)
			if err := o.sleep(ctx, retry.NextBackOff()); err != nil {
				return err
			}
			continue
		}

		o.setState(StateSleeping)
		pause := o.randDuration(o.cfg.SleepMin, o.cfg.SleepMax)
		o.logger.Info("cycle complete, sleeping", slog.Duration("for", pause))
		if err := o.sleep(ctx, pause); err != nil {
			return err
		}
		o.setState(StateLoggedOut)
	}
}

func (o *Orchestrator) setState(s State) {
	if o.state == s {
		return
	}
	o.logger.Debug("state change",
		slog.String("from", o.state.String()),
		slog.String("to", s.String()))
	o.state = s
}

// pace inserts the short randomized delay mandated between consecutive game
// actions.
func (o *Orchestrator) pace(ctx context.Context) error {
	return o.sleep(ctx, o.randDuration(o.cfg.PaceMin, o.cfg.PaceMax))
}

func (o *Orchestrator) randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(o.rng.Int63n(int64(max-min)))
}

func (o *Orchestrator) randInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + o.rng.Intn(max-min+1)
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
