package ranking

import (
	"github.com/wonny/salesbonus/internal/bonusconfig"
	"github.com/wonny/salesbonus/internal/contracts"
)

// SimpleRevenue is sale_price * quantity * (1 - discount/100)
func SimpleRevenue(item contracts.Item, _ contracts.Product) float64 {
	return contracts.LineRevenue(item)
}

// BonusByProfit is the reference rank bonus:
// rank 0 → 15%, ranks 1-2 → 10%, others → 5%, rank < 0 → 0.
func BonusByProfit(seller contracts.SellerStats, rank int, total int) float64 {
	switch {
	case rank < 0:
		return 0
	case rank == 0:
		return seller.Profit * 0.15
	case rank <= 2:
		return seller.Profit * 0.10
	default:
		return seller.Profit * 0.05
	}
}

// TieredBonus builds a rank bonus from a policy's tier table
func TieredBonus(r bonusconfig.Ranking) contracts.BonusFunc {
	return func(seller contracts.SellerStats, rank int, total int) float64 {
		return seller.Profit * r.PctForRank(rank)
	}
}

// OptionsFromConfig builds ranking options from a policy
func OptionsFromConfig(cfg *bonusconfig.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		CalculateRevenue: SimpleRevenue,
		CalculateBonus:   TieredBonus(cfg.Ranking),
		TopProducts:      cfg.Ranking.TopProducts,
	}
}
