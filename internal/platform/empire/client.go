// Package empire is the REST client for the game API. One Client serves one
// account: it owns that account's credential, signing key, and outbound
// proxy, and maps HTTP and game-level failures onto domain errors.
package empire

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

// ClientConfig holds the per-account connection parameters.
type ClientConfig struct {
	BaseURL  string
	InitData string // opaque chat-platform credential
	ProxyURL string // empty for a direct connection
	Timeout  time.Duration
}

// Client implements the game operations the session orchestrator consumes.
type Client struct {
	transport *Transport
	initData  string
	logger    *slog.Logger
}

// NewClient builds a Client for one account.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	transport, err := newTransport(cfg.BaseURL, cfg.ProxyURL, cfg.Timeout, logger)
	if err != nil {
		return nil, err
	}
	return &Client{
		transport: transport,
		initData:  cfg.InitData,
		logger:    logger.With(slog.String("component", "empire_client")),
	}, nil
}

// Login authenticates the account. On success the credential's hash becomes
// the Api-Key for every subsequent request.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]any{
		"data": map[string]any{
			"initData": c.initData,
			"platform": "android",
			"chatId":   "",
		},
	}
	if _, err := c.transport.Post(ctx, "/telegram/auth", body); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	key, err := credentialHash(c.initData)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.transport.SetAPIKey(key)
	return nil
}

// credentialHash extracts the hash parameter the game expects as Api-Key.
func credentialHash(initData string) (string, error) {
	values, err := url.ParseQuery(initData)
	if err == nil {
		if h := values.Get("hash"); h != "" {
			return h, nil
		}
	}
	if i := strings.Index(initData, "hash="); i >= 0 {
		return initData[i+len("hash="):], nil
	}
	return "", fmt.Errorf("%w: credential carries no hash", domain.ErrUnauthorized)
}

// FetchDatabase loads the immutable game catalog. Unknown formula kinds in
// the skill records are a load error.
func (c *Client) FetchDatabase(ctx context.Context) (*domain.Database, error) {
	data, err := c.transport.Post(ctx, "/dbs", map[string]any{"data": map[string]any{"dbs": []string{"all"}}})
	if err != nil {
		return nil, fmt.Errorf("fetch database: %w", err)
	}
	var db apiDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("fetch database: %w: %v", domain.ErrBadResponse, err)
	}
	out, err := db.toDomain()
	if err != nil {
		return nil, fmt.Errorf("fetch database: %w: %v", domain.ErrBadResponse, err)
	}
	return out, nil
}

// FetchProfile loads the full account snapshot.
func (c *Client) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	data, err := c.transport.Post(ctx, "/user/data/all", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	var p apiProfileData
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("fetch profile: %w: %v", domain.ErrBadResponse, err)
	}
	return p.toDomain(), nil
}

// SyncBalance refreshes the hero's balance triple and energy state.
func (c *Client) SyncBalance(ctx context.Context) (domain.Hero, domain.Energy, error) {
	data, err := c.transport.Post(ctx, "/hero/balance/sync", nil)
	if err != nil {
		return domain.Hero{}, domain.Energy{}, fmt.Errorf("sync balance: %w", err)
	}
	var payload struct {
		Hero apiHero `json:"hero"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Hero{}, domain.Energy{}, fmt.Errorf("sync balance: %w: %v", domain.ErrBadResponse, err)
	}
	return payload.Hero.hero(), payload.Hero.energy(), nil
}

// ClaimOfflineBonus collects the accumulated offline earnings.
func (c *Client) ClaimOfflineBonus(ctx context.Context) error {
	_, err := c.transport.Post(ctx, "/hero/bonus/offline/claim", nil)
	if err != nil {
		return fmt.Errorf("claim offline bonus: %w", err)
	}
	return nil
}

// ClaimDailyReward claims the daily-login ladder slot at index.
func (c *Client) ClaimDailyReward(ctx context.Context, index int) error {
	_, err := c.transport.Post(ctx, "/quests/daily/claim", map[string]any{"data": strconv.Itoa(index)})
	if err != nil {
		return fmt.Errorf("claim daily reward: %w", err)
	}
	return nil
}

// ClaimQuest claims the reward for one completed quest.
func (c *Client) ClaimQuest(ctx context.Context, key string) error {
	_, err := c.transport.Post(ctx, "/quests/claim", map[string]any{"data": []string{key}})
	if err != nil {
		return fmt.Errorf("claim quest %s: %w", key, err)
	}
	return nil
}

// DailyQuestProgress returns today's daily-quest states keyed by name.
func (c *Client) DailyQuestProgress(ctx context.Context) (map[string]domain.QuestState, error) {
	data, err := c.transport.Post(ctx, "/quests/daily/progress/all", nil)
	if err != nil {
		return nil, fmt.Errorf("daily quest progress: %w", err)
	}
	var raw map[string]struct {
		IsComplete bool `json:"isComplete"`
		IsRewarded bool `json:"isRewarded"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("daily quest progress: %w: %v", domain.ErrBadResponse, err)
	}
	out := make(map[string]domain.QuestState, len(raw))
	for name, q := range raw {
		out[name] = domain.QuestState{Key: name, IsComplete: q.IsComplete, IsRewarded: q.IsRewarded}
	}
	return out, nil
}

// ClaimDailyQuest claims one daily quest, optionally with an answer code.
func (c *Client) ClaimDailyQuest(ctx context.Context, quest, code string) error {
	var codeVal any
	if code != "" {
		codeVal = code
	}
	body := map[string]any{"data": map[string]any{"quest": quest, "code": codeVal}}
	if _, err := c.transport.Post(ctx, "/quests/daily/progress/claim", body); err != nil {
		return fmt.Errorf("claim daily quest %s: %w", quest, err)
	}
	return nil
}

// SolveRebus submits a puzzle answer and reports whether it was accepted.
func (c *Client) SolveRebus(ctx context.Context, key, answer string) (bool, error) {
	data, err := c.transport.Post(ctx, "/quests/check", map[string]any{"data": []string{key, answer}})
	if err != nil {
		return false, fmt.Errorf("solve rebus %s: %w", key, err)
	}
	var payload struct {
		Result bool `json:"result"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return false, fmt.Errorf("solve rebus %s: %w: %v", key, domain.ErrBadResponse, err)
	}
	return payload.Result, nil
}

// ClaimAllyBonus collects the pending bonus for one ally.
func (c *Client) ClaimAllyBonus(ctx context.Context, allyID int64) error {
	_, err := c.transport.Post(ctx, "/friends/claim", map[string]any{"data": allyID})
	if err != nil {
		return fmt.Errorf("claim ally bonus: %w", err)
	}
	return nil
}

// Tap reports one tap batch and returns the remaining energy. The game's
// "take some rest" rule surfaces as domain.ErrTapsExhausted.
func (c *Client) Tap(ctx context.Context, amount int64, seconds int, energyRemaining int64) (int64, error) {
	body := map[string]any{
		"data": map[string]any{
			"data": map[string]any{
				"task": map[string]any{"amount": amount, "currentEnergy": energyRemaining},
			},
			"seconds": seconds,
		},
	}
	data, err := c.transport.Post(ctx, "/hero/action/tap", body)
	if err != nil {
		return 0, fmt.Errorf("tap: %w", err)
	}
	var payload struct {
		Hero struct {
			Earns struct {
				Task struct {
					Energy flexInt `json:"energy"`
				} `json:"task"`
			} `json:"earns"`
		} `json:"hero"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("tap: %w: %v", domain.ErrBadResponse, err)
	}
	return int64(payload.Hero.Earns.Task.Energy), nil
}

// OpenFundStakes returns the account's open fund positions.
func (c *Client) OpenFundStakes(ctx context.Context) ([]domain.FundStake, error) {
	data, err := c.transport.Post(ctx, "/fund/info", nil)
	if err != nil {
		return nil, fmt.Errorf("fund info: %w", err)
	}
	var payload struct {
		Funds []apiFundStake `json:"funds"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("fund info: %w: %v", domain.ErrBadResponse, err)
	}
	out := make([]domain.FundStake, 0, len(payload.Funds))
	for _, f := range payload.Funds {
		out = append(out, domain.FundStake{
			FundKey:     f.FundKey,
			Money:       int64(f.Money),
			MoneyProfit: int64(f.MoneyProfit),
		})
	}
	return out, nil
}

// Invest stakes amount into the named fund.
func (c *Client) Invest(ctx context.Context, fund string, amount int64) error {
	body := map[string]any{"data": map[string]any{"fund": fund, "money": amount}}
	if _, err := c.transport.Post(ctx, "/fund/invest", body); err != nil {
		return fmt.Errorf("invest %s: %w", fund, err)
	}
	return nil
}

// PvpInfo refreshes the negotiation state before a pvp run.
func (c *Client) PvpInfo(ctx context.Context) error {
	if _, err := c.transport.Post(ctx, "/pvp/info", nil); err != nil {
		return fmt.Errorf("pvp info: %w", err)
	}
	return nil
}

// PvpFight requests a match. A nil fight means no opponent was found.
func (c *Client) PvpFight(ctx context.Context, league, strategy string) (*domain.Fight, error) {
	body := map[string]any{"data": map[string]any{"league": league, "strategy": strategy}}
	data, err := c.transport.Post(ctx, "/pvp/fight", body)
	if err != nil {
		return nil, fmt.Errorf("pvp fight: %w", err)
	}
	var payload struct {
		Opponent json.RawMessage `json:"opponent"`
		Fight    *apiFight       `json:"fight"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("pvp fight: %w: %v", domain.ErrBadResponse, err)
	}
	if len(payload.Opponent) == 0 || string(payload.Opponent) == "null" || payload.Fight == nil {
		return nil, nil
	}
	return payload.Fight.toDomain(), nil
}

// PvpClaim collects any pending negotiation reward.
func (c *Client) PvpClaim(ctx context.Context) error {
	if _, err := c.transport.Post(ctx, "/pvp/claim", nil); err != nil {
		return fmt.Errorf("pvp claim: %w", err)
	}
	return nil
}

// BuySkill purchases the next level of a skill.
func (c *Client) BuySkill(ctx context.Context, key string) error {
	if _, err := c.transport.Post(ctx, "/skills/improve", map[string]any{"data": key}); err != nil {
		return fmt.Errorf("buy skill %s: %w", key, err)
	}
	return nil
}
