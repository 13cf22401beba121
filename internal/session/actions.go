package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
	"github.com/paveL1boyko/MuskEmpireBot/internal/stake"
	"github.com/paveL1boyko/MuskEmpireBot/internal/upgrade"
)

// cycle runs one full pass: authenticate, sync, then the ordered action
// list. Order matters because every step's sizing decisions depend on the
// balance the previous step left behind.
func (o *Orchestrator) cycle(ctx context.Context) error {
	log := o.logger.With(slog.String("cycle", uuid.NewString()))

	o.setState(StateAuthenticating)
	if err := o.client.Login(ctx); err != nil {
		return err
	}

	db, err := o.client.FetchDatabase(ctx)
	if err != nil {
		return err
	}
	o.db = db

	profile, err := o.client.FetchProfile(ctx)
	if err != nil {
		return err
	}
	o.profile = profile
	o.setState(StateSynced)

	o.features.NeedQuiz = false
	o.features.NeedRebus = false
	o.validatePvp(log)

	log.Info("profile synced",
		slog.Int64("balance", profile.Hero.Balance),
		slog.Int("level", profile.Hero.Level),
		slog.Int64("money_per_hour", profile.Hero.MoneyPerHour))

	if profile.OfflineBonus > 0 {
		if err := o.client.ClaimOfflineBonus(ctx); err != nil {
			return err
		}
		log.Info("offline bonus claimed", slog.Int64("amount", profile.OfflineBonus))
	}

	o.setState(StateActing)
	steps := []struct {
		name string
		run  func(context.Context, *slog.Logger) error
	}{
		{"daily_reward", o.claimDailyReward},
		{"quests", o.claimQuests},
		{"allies", o.claimAllyBonuses},
		{"taps", o.tapLoop},
		{"funds", o.investFunds},
		{"puzzles", o.solvePuzzles},
		{"pvp", o.pvpLoop},
		{"upgrades", o.upgradePass},
	}
	for _, step := range steps {
		if err := step.run(ctx, log); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
		if err := o.pace(ctx); err != nil {
			return err
		}
	}

	hero, _, err := o.client.SyncBalance(ctx)
	if err != nil {
		return err
	}
	log.Info("cycle balance", slog.Int64("balance", hero.Balance))
	return nil
}

// validatePvp checks the configured league and strategy against the fetched
// catalogs once per cycle. A bad configuration disables pvp for the run
// instead of failing the session.
func (o *Orchestrator) validatePvp(log *slog.Logger) {
	if !o.cfg.PvpEnabled || o.features.PvpDisabled {
		return
	}
	disable := func(reason string) {
		o.features.PvpDisabled = true
		o.features.PvpDisabledReason = reason
		log.Warn("pvp disabled for this run", slog.String("reason", reason))
	}
	league := o.db.LeagueByKey(o.cfg.PvpLeague)
	if league == nil {
		disable(fmt.Sprintf("unknown league %q", o.cfg.PvpLeague))
		return
	}
	if o.profile.Hero.Level < league.RequiredLevel {
		disable(fmt.Sprintf("hero level %d below league requirement %d",
			o.profile.Hero.Level, league.RequiredLevel))
		return
	}
	if o.cfg.PvpStrategy != domain.StrategyRandom && !o.db.HasStrategy(o.cfg.PvpStrategy) {
		disable(fmt.Sprintf("unknown strategy %q", o.cfg.PvpStrategy))
	}
}

func (o *Orchestrator) claimDailyReward(ctx context.Context, log *slog.Logger) error {
	for index, status := range o.profile.DailyRewards {
		if status != domain.DailyRewardCanTake {
			continue
		}
		if err := o.client.ClaimDailyReward(ctx, index); err != nil {
			return err
		}
		log.Info("daily reward claimed", slog.Int("day", index))
		return nil
	}
	return nil
}

// claimQuests sweeps both quest lists: regular quests that are complete but
// unrewarded, and today's dailies. The quiz daily needs an external answer,
// so it is only flagged here and handled by the puzzle step.
func (o *Orchestrator) claimQuests(ctx context.Context, log *slog.Logger) error {
	for _, q := range o.profile.Quests {
		if !q.IsComplete || q.IsRewarded {
			continue
		}
		if err := o.client.ClaimQuest(ctx, q.Key); err != nil {
			return err
		}
		log.Info("quest claimed", slog.String("quest", q.Key))
		if err := o.pace(ctx); err != nil {
			return err
		}
	}

	dailies, err := o.client.DailyQuestProgress(ctx)
	if err != nil {
		return err
	}
	for name, q := range dailies {
		if q.IsRewarded || strings.Contains(name, "youtube") {
			continue
		}
		if name == "quiz" {
			o.features.NeedQuiz = true
			continue
		}
		if !q.IsComplete {
			continue
		}
		if err := o.client.ClaimDailyQuest(ctx, name, ""); err != nil {
			return err
		}
		log.Info("daily quest claimed", slog.String("quest", name))
		if err := o.pace(ctx); err != nil {
			return err
		}
	}

	o.flagRebus()
	return nil
}

// flagRebus looks the rebus quest up in the catalog and remembers its key
// and stored answer unless the account already collected it.
func (o *Orchestrator) flagRebus() {
	for _, def := range o.db.Quests {
		if !strings.HasPrefix(def.Key, "rebus") {
			continue
		}
		rewarded := false
		for _, q := range o.profile.Quests {
			if q.Key == def.Key && q.IsRewarded {
				rewarded = true
				break
			}
		}
		if !rewarded {
			o.features.NeedRebus = true
			o.features.RebusKey = def.Key
			o.features.RebusAnswer = def.CheckData
		}
		return
	}
}

func (o *Orchestrator) claimAllyBonuses(ctx context.Context, log *slog.Logger) error {
	for _, ally := range o.profile.Allies {
		if ally.BonusToTake <= 0 {
			continue
		}
		if err := o.client.ClaimAllyBonus(ctx, ally.ID); err != nil {
			return err
		}
		log.Info("ally bonus claimed",
			slog.String("ally", ally.Name),
			slog.Int64("amount", ally.BonusToTake))
		if err := o.pace(ctx); err != nil {
			return err
		}
	}
	return nil
}

// tapLoop converts energy into money in randomized batches until energy
// runs out. Each batch spends ceil(earned/2) energy. The game's exhaustion
// signal pauses tapping for three hours and is not an error.
func (o *Orchestrator) tapLoop(ctx context.Context, log *slog.Logger) error {
	if !o.cfg.TapsEnabled {
		return nil
	}
	if o.now().Before(o.features.TapsPausedUntil) {
		log.Debug("taps paused", slog.Time("until", o.features.TapsPausedUntil))
		return nil
	}
	if o.profile.Energy.MoneyPerTap <= 0 {
		return nil
	}

	energy := o.profile.Energy.Current
	for {
		tps := o.randInt(o.cfg.TapsPerSecondMin, o.cfg.TapsPerSecondMax)
		seconds := o.randInt(5, 8)
		earned := o.profile.Energy.MoneyPerTap * int64(tps) * int64(seconds)
		cost := (earned + 1) / 2
		if earned <= 0 || energy < cost {
			break
		}
		remaining, err := o.client.Tap(ctx, earned, seconds, energy-cost)
		if errors.Is(err, domain.ErrTapsExhausted) {
			o.features.TapsPausedUntil = o.now().Add(tapsExhaustedPause)
			log.Info("taps exhausted, pausing", slog.Time("until", o.features.TapsPausedUntil))
			return nil
		}
		if err != nil {
			return err
		}
		log.Debug("tapped", slog.Int64("earned", earned), slog.Int64("energy_left", remaining))
		energy = remaining
		if err := o.pace(ctx); err != nil {
			return err
		}
	}
	return nil
}

// investFunds backs the hinted funds with a StakeSizer-computed wager. An
// already open position skips the step for the day.
func (o *Orchestrator) investFunds(ctx context.Context, log *slog.Logger) error {
	if !o.cfg.InvestEnabled {
		return nil
	}
	open, err := o.client.OpenFundStakes(ctx)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		log.Debug("fund position already open", slog.Int("count", len(open)))
		return nil
	}

	h, err := o.hints.Hints(ctx, o.now())
	if err != nil {
		log.Warn("hints unavailable, skipping funds", slog.String("error", err.Error()))
		return nil
	}
	if len(h.Funds) == 0 {
		return nil
	}

	hero, _, err := o.client.SyncBalance(ctx)
	if err != nil {
		return err
	}
	balance := hero.Balance
	for _, fund := range h.Funds {
		wager := stake.Affordable(balance, hero.Level, hero.MoneyPerHour)
		if wager > balance {
			log.Debug("balance below minimum stake", slog.Int64("balance", balance))
			break
		}
		if err := o.client.Invest(ctx, fund, wager); err != nil {
			return err
		}
		balance -= wager
		log.Info("invested", slog.String("fund", fund), slog.Int64("amount", wager))
		if err := o.pace(ctx); err != nil {
			return err
		}
	}
	return nil
}

// solvePuzzles answers the quiz daily and the rebus quest using the helper
// feed. Missing answers are skipped silently; the step retries next cycle.
func (o *Orchestrator) solvePuzzles(ctx context.Context, log *slog.Logger) error {
	if !o.features.NeedQuiz && !o.features.NeedRebus {
		return nil
	}
	h, err := o.hints.Hints(ctx, o.now())
	if err != nil {
		log.Warn("hints unavailable, skipping puzzles", slog.String("error", err.Error()))
		return nil
	}

	if o.features.NeedQuiz && h.Quiz != "" {
		if err := o.client.ClaimDailyQuest(ctx, "quiz", h.Quiz); err != nil {
			return err
		}
		o.features.NeedQuiz = false
		log.Info("quiz solved")
		if err := o.pace(ctx); err != nil {
			return err
		}
	}

	if o.features.NeedRebus {
		answer := o.features.RebusAnswer
		if answer == "" {
			answer = h.Rebus
		}
		if answer == "" {
			return nil
		}
		ok, err := o.client.SolveRebus(ctx, o.features.RebusKey, answer)
		if err != nil {
			return err
		}
		if ok {
			if err := o.client.ClaimQuest(ctx, o.features.RebusKey); err != nil {
				return err
			}
			o.features.NeedRebus = false
			log.Info("rebus solved", slog.String("quest", o.features.RebusKey))
		}
	}
	return nil
}

// pvpLoop plays the configured number of negotiations, tracking the balance
// locally. A null match does not consume an attempt. The loop stops early
// when the balance cannot cover the league's contract size.
func (o *Orchestrator) pvpLoop(ctx context.Context, log *slog.Logger) error {
	if !o.cfg.PvpEnabled || o.features.PvpDisabled || o.cfg.PvpCount <= 0 {
		return nil
	}
	league := o.db.LeagueByKey(o.cfg.PvpLeague)

	if err := o.client.PvpInfo(ctx); err != nil {
		return err
	}
	hero, _, err := o.client.SyncBalance(ctx)
	if err != nil {
		return err
	}

	balance := hero.Balance
	var netProfit int64
	attempts := o.cfg.PvpCount
	for attempts > 0 {
		if balance < league.MaxContract {
			log.Info("pvp stopped, balance below contract size",
				slog.Int64("balance", balance),
				slog.Int64("max_contract", league.MaxContract))
			break
		}
		strategy := o.cfg.PvpStrategy
		if strategy == domain.StrategyRandom && len(o.db.Strategies) > 0 {
			strategy = o.db.Strategies[o.rng.Intn(len(o.db.Strategies))]
		}
		fight, err := o.client.PvpFight(ctx, league.Key, strategy)
		if err != nil {
			return err
		}
		if fight == nil {
			if err := o.pace(ctx); err != nil {
				return err
			}
			continue
		}

		if fight.Winner == o.profile.UserID {
			balance += fight.Profit
			netProfit += fight.Profit
		} else {
			balance -= fight.Contract
			netProfit -= fight.Contract
		}
		if err := o.client.PvpClaim(ctx); err != nil {
			return err
		}
		attempts--
		log.Info("fight resolved",
			slog.Bool("won", fight.Winner == o.profile.UserID),
			slog.Int64("net_profit", netProfit),
			slog.Int("attempts_left", attempts))
		if err := o.pace(ctx); err != nil {
			return err
		}
	}
	return nil
}

// upgradePass buys the best-weighted upgrades the reserve allows. The
// reserve keeps enough liquidity for the next pvp run on top of the
// configured savings floor.
func (o *Orchestrator) upgradePass(ctx context.Context, log *slog.Logger) error {
	hero, _, err := o.client.SyncBalance(ctx)
	if err != nil {
		return err
	}

	reserve := o.cfg.MoneyToSave
	if o.cfg.PvpEnabled && !o.features.PvpDisabled {
		if m := stake.Max(hero.Level, hero.MoneyPerHour); m > reserve {
			reserve = m
		}
	}
	pol := upgrade.Policy{
		Reserve:    reserve,
		MinWeight:  o.cfg.SkillWeightMin,
		SkipTitles: make(map[string]bool, len(o.cfg.SkipTitles)),
		Mining:     o.cfg.Mining,
	}
	for _, title := range o.cfg.SkipTitles {
		pol.SkipTitles[title] = true
	}

	evals := upgrade.Evaluate(o.db.Skills, o.profile, o.now(), pol)
	picks := upgrade.Plan(evals, hero.Balance, pol)
	for _, pick := range picks {
		if err := o.client.BuySkill(ctx, pick.Skill.Key); err != nil {
			return err
		}
		log.Info("skill upgraded",
			slog.String("skill", pick.Skill.Key),
			slog.Int("level", pick.NextLevel),
			slog.Int64("price", pick.Price),
			slog.Int64("profit", pick.Profit))
		if err := o.pace(ctx); err != nil {
			return err
		}
	}
	return nil
}
