package empire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

// dateLayout is the timestamp format used throughout the game API.
const dateLayout = "2006-01-02 15:04:05"

// flexInt decodes a JSON number or a numeric string; the game database is
// inconsistent about which it emits.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flexInt: %w", err)
	}
	*f = flexInt(v)
	return nil
}

// skillMap decodes either an object of prerequisite levels or the empty
// array the API emits when there are none.
type skillMap map[string]int

func (m *skillMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || string(trimmed) == "null" {
		*m = nil
		return nil
	}
	var raw map[string]flexInt
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		out[k] = int(v)
	}
	*m = out
	return nil
}

// apiDate decodes the game's "2006-01-02 15:04:05" timestamps, which may be
// null or empty.
type apiDate struct {
	time.Time
}

func (d *apiDate) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("apiDate: %w", err)
	}
	d.Time = t.UTC()
	return nil
}

// ---------------------------------------------------------------------------
// Game database
// ---------------------------------------------------------------------------

type apiDatabase struct {
	Skills     []apiSkill    `json:"dbSkills"`
	Leagues    []apiLeague   `json:"dbNegotiationsLeague"`
	Strategies []apiStrategy `json:"dbNegotiationsStrategy"`
	Quests     []apiQuestDef `json:"dbQuests"`
}

type apiSkill struct {
	Key            string          `json:"key"`
	Title          string          `json:"title"`
	Category       string          `json:"category"`
	SubCategory    string          `json:"subCategory"`
	PriceBasic     float64         `json:"priceBasic"`
	PriceFormula   string          `json:"priceFormula"`
	PriceFormulaK  float64         `json:"priceFormulaK"`
	ProfitBasic    float64         `json:"profitBasic"`
	ProfitFormula  string          `json:"profitFormula"`
	ProfitFormulaK float64         `json:"profitFormulaK"`
	MaxLevel       int             `json:"maxLevel"`
	Levels         []apiSkillLevel `json:"levels"`
}

type apiSkillLevel struct {
	Level             int      `json:"level"`
	RequiredSkills    skillMap `json:"requiredSkills"`
	RequiredHeroLevel int      `json:"requiredHeroLevel"`
	RequiredFriends   int      `json:"requiredFriends"`
}

type apiLeague struct {
	Key           string  `json:"key"`
	RequiredLevel flexInt `json:"requiredLevel"`
	MaxContract   flexInt `json:"maxContract"`
}

type apiStrategy struct {
	Key string `json:"key"`
}

type apiQuestDef struct {
	Key       string `json:"key"`
	CheckData string `json:"checkData"`
}

// toDomain converts the raw database, rejecting unknown formula kinds.
func (db *apiDatabase) toDomain() (*domain.Database, error) {
	out := &domain.Database{
		Skills:     make([]domain.Skill, 0, len(db.Skills)),
		Leagues:    make([]domain.League, 0, len(db.Leagues)),
		Strategies: make([]string, 0, len(db.Strategies)),
		Quests:     make([]domain.QuestDef, 0, len(db.Quests)),
	}
	for _, s := range db.Skills {
		priceKind, err := domain.ParseFormulaKind(s.PriceFormula)
		if err != nil {
			return nil, fmt.Errorf("skill %s price: %w", s.Key, err)
		}
		profitKind, err := domain.ParseFormulaKind(s.ProfitFormula)
		if err != nil {
			return nil, fmt.Errorf("skill %s profit: %w", s.Key, err)
		}
		skill := domain.Skill{
			Key:         s.Key,
			Title:       s.Title,
			Category:    s.Category,
			SubCategory: s.SubCategory,
			PriceBase:   s.PriceBasic,
			PriceKind:   priceKind,
			PriceCoeff:  s.PriceFormulaK,
			ProfitBase:  s.ProfitBasic,
			ProfitKind:  profitKind,
			ProfitCoeff: s.ProfitFormulaK,
			MaxLevel:    s.MaxLevel,
		}
		for _, lvl := range s.Levels {
			skill.Requirements = append(skill.Requirements, domain.SkillRequirement{
				Level:             lvl.Level,
				RequiredAllies:    lvl.RequiredFriends,
				RequiredHeroLevel: lvl.RequiredHeroLevel,
				RequiredSkills:    lvl.RequiredSkills,
			})
		}
		out.Skills = append(out.Skills, skill)
	}
	for _, l := range db.Leagues {
		out.Leagues = append(out.Leagues, domain.League{
			Key:           l.Key,
			RequiredLevel: int(l.RequiredLevel),
			MaxContract:   int64(l.MaxContract),
		})
	}
	for _, s := range db.Strategies {
		out.Strategies = append(out.Strategies, s.Key)
	}
	for _, q := range db.Quests {
		out.Quests = append(out.Quests, domain.QuestDef{Key: q.Key, CheckData: q.CheckData})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Profile and balance
// ---------------------------------------------------------------------------

type apiEarnsTask struct {
	MoneyPerTap       flexInt `json:"moneyPerTap"`
	Limit             flexInt `json:"limit"`
	Energy            flexInt `json:"energy"`
	RecoveryPerSecond flexInt `json:"recoveryPerSecond"`
}

type apiHero struct {
	Money        flexInt `json:"money"`
	Level        flexInt `json:"level"`
	MoneyPerHour flexInt `json:"moneyPerHour"`
	OfflineBonus flexInt `json:"offlineBonus"`
	Earns        struct {
		Task apiEarnsTask `json:"task"`
	} `json:"earns"`
}

func (h *apiHero) hero() domain.Hero {
	return domain.Hero{
		Balance:      int64(h.Money),
		Level:        int(h.Level),
		MoneyPerHour: int64(h.MoneyPerHour),
	}
}

func (h *apiHero) energy() domain.Energy {
	return domain.Energy{
		MoneyPerTap:       int64(h.Earns.Task.MoneyPerTap),
		Limit:             int64(h.Earns.Task.Limit),
		Current:           int64(h.Earns.Task.Energy),
		RecoveryPerSecond: int64(h.Earns.Task.RecoveryPerSecond),
	}
}

type apiSkillState struct {
	Level             flexInt `json:"level"`
	LastUpgradeDate   apiDate `json:"lastUpgradeDate"`
	FinishUpgradeDate apiDate `json:"finishUpgradeDate"`
}

// skillStates decodes the owned-skill object, which is an empty array when
// the account owns nothing.
type skillStates map[string]apiSkillState

func (s *skillStates) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || string(trimmed) == "null" {
		*s = nil
		return nil
	}
	var raw map[string]apiSkillState
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*s = raw
	return nil
}

type apiProfileData struct {
	Profile struct {
		ID flexInt `json:"id"`
	} `json:"profile"`
	Hero         apiHero           `json:"hero"`
	DailyRewards map[string]string `json:"dailyRewards"`
	Quests       []apiQuestState   `json:"quests"`
	Friends      []apiFriend       `json:"friends"`
	Skills       skillStates       `json:"skills"`
}

type apiQuestState struct {
	Key        string `json:"key"`
	IsComplete bool   `json:"isComplete"`
	IsRewarded bool   `json:"isRewarded"`
}

type apiFriend struct {
	ID          flexInt `json:"id"`
	Name        string  `json:"name"`
	BonusToTake flexInt `json:"bonusToTake"`
}

func (p *apiProfileData) toDomain() *domain.Profile {
	out := &domain.Profile{
		UserID:       int64(p.Profile.ID),
		Hero:         p.Hero.hero(),
		Energy:       p.Hero.energy(),
		OfflineBonus: int64(p.Hero.OfflineBonus),
		DailyRewards: make(map[int]string, len(p.DailyRewards)),
		Skills:       make(map[string]domain.SkillState, len(p.Skills)),
	}
	for day, status := range p.DailyRewards {
		n, err := strconv.Atoi(day)
		if err != nil {
			continue
		}
		out.DailyRewards[n] = status
	}
	for _, q := range p.Quests {
		out.Quests = append(out.Quests, domain.QuestState{
			Key:        q.Key,
			IsComplete: q.IsComplete,
			IsRewarded: q.IsRewarded,
		})
	}
	for _, f := range p.Friends {
		out.Allies = append(out.Allies, domain.Ally{
			ID:          int64(f.ID),
			Name:        f.Name,
			BonusToTake: int64(f.BonusToTake),
		})
	}
	for key, st := range p.Skills {
		out.Skills[key] = domain.SkillState{
			Level:           int(st.Level),
			LastUpgradeAt:   st.LastUpgradeDate.Time,
			FinishUpgradeAt: st.FinishUpgradeDate.Time,
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// PvP and funds
// ---------------------------------------------------------------------------

type apiFight struct {
	League          string  `json:"league"`
	MoneyContract   flexInt `json:"moneyContract"`
	MoneyProfit     flexInt `json:"moneyProfit"`
	Player1         flexInt `json:"player1"`
	Player2         flexInt `json:"player2"`
	Player1Strategy string  `json:"player1Strategy"`
	Player2Strategy string  `json:"player2Strategy"`
	Winner          flexInt `json:"winner"`
}

func (f *apiFight) toDomain() *domain.Fight {
	return &domain.Fight{
		League:          f.League,
		Contract:        int64(f.MoneyContract),
		Profit:          int64(f.MoneyProfit),
		Player1:         int64(f.Player1),
		Player2:         int64(f.Player2),
		Player1Strategy: f.Player1Strategy,
		Player2Strategy: f.Player2Strategy,
		Winner:          int64(f.Winner),
	}
}

type apiFundStake struct {
	FundKey     string  `json:"fundKey"`
	Money       flexInt `json:"money"`
	MoneyProfit flexInt `json:"moneyProfit"`
}
