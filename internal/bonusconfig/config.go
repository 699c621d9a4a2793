package bonusconfig

import "time"

// Config는 보너스 정책 전체 설정
type Config struct {
	Meta    Meta       `yaml:"meta" json:"meta"`
	Ranking Ranking    `yaml:"ranking" json:"ranking"`
	Rules   []RuleSpec `yaml:"rules" json:"rules"`
}

// Meta 메타 정보
type Meta struct {
	PolicyID string `yaml:"policy_id" json:"policy_id"`
	Version  string `yaml:"version" json:"version"`
}

// Ranking: rank-based primary bonus
type Ranking struct {
	Tiers       []Tier  `yaml:"tiers" json:"tiers"`
	DefaultPct  float64 `yaml:"default_pct" json:"default_pct"` // ranks past the last tier
	TopProducts int     `yaml:"top_products" json:"top_products"`
}

// Tier pays Pct of profit to every rank <= MaxRank not covered by an earlier tier
type Tier struct {
	MaxRank int     `yaml:"max_rank" json:"max_rank"` // 0-based, inclusive
	Pct     float64 `yaml:"pct" json:"pct"`
}

// RuleSpec enables one special-bonus rule; nil parameters fall back to the
// rule's reference values.
type RuleSpec struct {
	Name      string   `yaml:"name" json:"name"`
	Pct       *float64 `yaml:"pct,omitempty" json:"pct,omitempty"`
	Amount    *float64 `yaml:"amount,omitempty" json:"amount,omitempty"`
	Tolerance *float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
}

// PctForRank returns the profit share of a 0-based rank; negative ranks get 0
func (r Ranking) PctForRank(rank int) float64 {
	if rank < 0 {
		return 0
	}
	for _, t := range r.Tiers {
		if rank <= t.MaxRank {
			return t.Pct
		}
	}
	return r.DefaultPct
}

// Default returns the reference policy: 15% for rank 0, 10% for ranks 1-2,
// 5% otherwise, top 10 products, all five special rules.
func Default() *Config {
	return &Config{
		Meta: Meta{PolicyID: "default", Version: "1"},
		Ranking: Ranking{
			Tiers: []Tier{
				{MaxRank: 0, Pct: 0.15},
				{MaxRank: 2, Pct: 0.10},
			},
			DefaultPct:  0.05,
			TopProducts: 10,
		},
		Rules: []RuleSpec{
			{Name: "best_customer_seller"},
			{Name: "best_customer_retention"},
			{Name: "largest_single_sale"},
			{Name: "highest_average_profit"},
			{Name: "stable_growth"},
		},
	}
}

// PolicySnapshot records which policy produced a run (재현성용)
type PolicySnapshot struct {
	PolicyHash string    `json:"policy_hash"`
	PolicyYAML string    `json:"policy_yaml"`
	PolicyID   string    `json:"policy_id"`
	CreatedAt  time.Time `json:"created_at"`
}
