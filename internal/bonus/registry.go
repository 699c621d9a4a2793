package bonus

import (
	"fmt"

	"github.com/wonny/salesbonus/internal/bonusconfig"
	"github.com/wonny/salesbonus/internal/metrics"
)

type ruleFactory func(spec bonusconfig.RuleSpec) Rule

var registry = map[string]ruleFactory{
	CategoryBestCustomerSeller: func(s bonusconfig.RuleSpec) Rule {
		return BestCustomerSeller(orDefault(s.Pct, DefaultBestCustomerPct))
	},
	CategoryBestCustomerRetention: func(s bonusconfig.RuleSpec) Rule {
		return BestCustomerRetention(orDefault(s.Amount, DefaultRetentionAmount))
	},
	CategoryLargestSingleSale: func(s bonusconfig.RuleSpec) Rule {
		return LargestSingleSale(orDefault(s.Pct, DefaultLargestSalePct))
	},
	CategoryHighestAverageProfit: func(s bonusconfig.RuleSpec) Rule {
		return HighestAverageProfit(orDefault(s.Pct, DefaultAverageProfitPct))
	},
	CategoryStableGrowth: func(s bonusconfig.RuleSpec) Rule {
		return StableGrowth(
			orDefault(s.Tolerance, metrics.DefaultTolerance),
			orDefault(s.Pct, DefaultStableGrowthPct),
		)
	},
}

// RulesFromConfig builds the rule list in the order given by the policy
func RulesFromConfig(cfg *bonusconfig.Config) ([]Rule, error) {
	if cfg == nil || len(cfg.Rules) == 0 {
		return DefaultRules(), nil
	}

	rules := make([]Rule, 0, len(cfg.Rules))
	for i, spec := range cfg.Rules {
		factory, ok := registry[spec.Name]
		if !ok {
			return nil, fmt.Errorf("rules[%d]: unknown bonus rule %q", i, spec.Name)
		}
		rules = append(rules, factory(spec))
	}
	return rules, nil
}

// RuleNames lists the registered rule names
func RuleNames() []string {
	return []string{
		CategoryBestCustomerSeller,
		CategoryBestCustomerRetention,
		CategoryLargestSingleSale,
		CategoryHighestAverageProfit,
		CategoryStableGrowth,
	}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
