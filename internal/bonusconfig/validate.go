package bonusconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	// === Ranking ===
	prevRank := -1
	for i, tier := range cfg.Ranking.Tiers {
		field := fmt.Sprintf("ranking.tiers[%d]", i)
		if tier.MaxRank <= prevRank {
			return ValidationError{field, fmt.Sprintf("max_rank must be > %d", prevRank)}
		}
		if err := validatePctRange(tier.Pct, field+".pct"); err != nil {
			return err
		}
		prevRank = tier.MaxRank
	}
	if err := validatePctRange(cfg.Ranking.DefaultPct, "ranking.default_pct"); err != nil {
		return err
	}
	if cfg.Ranking.TopProducts < 0 {
		return ValidationError{"ranking.top_products", "must be >= 0"}
	}

	// === Rules ===
	seen := make(map[string]bool, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if rule.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seen[rule.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate rule %q", rule.Name)}
		}
		seen[rule.Name] = true

		if rule.Pct != nil {
			if err := validatePctRange(*rule.Pct, field+".pct"); err != nil {
				return err
			}
		}
		if rule.Amount != nil && *rule.Amount < 0 {
			return ValidationError{field + ".amount", "must be >= 0"}
		}
		if rule.Tolerance != nil && *rule.Tolerance < 0 {
			return ValidationError{field + ".tolerance", "must be >= 0"}
		}
	}

	return nil
}

// validatePctRange는 퍼센트 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
