package ranking

import (
	"sort"

	"github.com/wonny/salesbonus/internal/contracts"
)

// DefaultTopProducts is the length of each seller's best-sellers list
const DefaultTopProducts = 10

// Options carries the injected strategies of the ranking stage
type Options struct {
	CalculateRevenue contracts.RevenueFunc
	CalculateBonus   contracts.BonusFunc

	// TopProducts caps the best-sellers list; 0 means DefaultTopProducts
	TopProducts int
}

// DefaultOptions wires the reference revenue formula and rank bonus
func DefaultOptions() Options {
	return Options{
		CalculateRevenue: SimpleRevenue,
		CalculateBonus:   BonusByProfit,
		TopProducts:      DefaultTopProducts,
	}
}

func validateOptions(opts Options) error {
	if opts.CalculateRevenue == nil {
		return contracts.InvalidOptions("calculate_revenue", "strategy function is required")
	}
	if opts.CalculateBonus == nil {
		return contracts.InvalidOptions("calculate_bonus", "strategy function is required")
	}
	if opts.TopProducts < 0 {
		return contracts.InvalidOptions("top_products", "must be >= 0")
	}
	return nil
}

// AnalyzeSalesData builds per-seller totals from the raw records, ranks
// sellers by profit (descending, catalog order on ties) and assigns the
// primary bonus through opts.CalculateBonus.
func AnalyzeSalesData(ds *contracts.Dataset, opts Options) ([]contracts.SellerReport, error) {
	if err := contracts.ValidateDataset(ds); err != nil {
		return nil, err
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	stats := BuildStats(ds, opts.CalculateRevenue)

	// Sort by profit (descending); stable keeps catalog order on ties
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Profit > stats[j].Profit
	})

	limit := opts.TopProducts
	if limit == 0 {
		limit = DefaultTopProducts
	}

	reports := make([]contracts.SellerReport, 0, len(stats))
	total := len(stats)
	for rank, s := range stats {
		bonus := opts.CalculateBonus(*s, rank, total)
		reports = append(reports, contracts.SellerReport{
			SellerID:    s.ID,
			Name:        s.Name,
			Revenue:     contracts.Round2(s.Revenue),
			Profit:      contracts.Round2(s.Profit),
			SalesCount:  s.SalesCount,
			TopProducts: TopProducts(s, limit),
			Bonus:       contracts.Round2(bonus),
		})
	}

	return reports, nil
}

// BuildStats seeds one running total per cataloged seller and folds the
// records into them. Records of unknown sellers and items of unknown SKUs
// are skipped.
func BuildStats(ds *contracts.Dataset, revenue contracts.RevenueFunc) []*contracts.SellerStats {
	stats := make([]*contracts.SellerStats, 0, len(ds.Sellers))
	index := make(map[string]*contracts.SellerStats, len(ds.Sellers))
	for _, seller := range ds.Sellers {
		if _, exists := index[seller.ID]; exists {
			continue
		}
		s := &contracts.SellerStats{
			ID:           seller.ID,
			Name:         seller.DisplayName(),
			ProductsSold: make(map[string]int),
		}
		index[seller.ID] = s
		stats = append(stats, s)
	}

	catalog := ds.ProductIndex()

	for _, record := range ds.PurchaseRecords {
		s, ok := index[record.SellerID]
		if !ok {
			continue
		}

		s.SalesCount++
		s.Revenue += record.TotalAmount

		for _, item := range record.Items {
			product, ok := catalog[item.SKU]
			if !ok {
				continue
			}

			cost := product.PurchasePrice * float64(item.Quantity)
			s.Profit += revenue(item, product) - cost

			if _, seen := s.ProductsSold[item.SKU]; !seen {
				s.SKUOrder = append(s.SKUOrder, item.SKU)
			}
			s.ProductsSold[item.SKU] += item.Quantity
		}
	}

	return stats
}

// TopProducts returns up to limit SKUs by quantity (descending); ties keep
// first-sold order.
func TopProducts(s *contracts.SellerStats, limit int) []contracts.TopProduct {
	top := make([]contracts.TopProduct, 0, len(s.SKUOrder))
	for _, sku := range s.SKUOrder {
		top = append(top, contracts.TopProduct{SKU: sku, Quantity: s.ProductsSold[sku]})
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Quantity > top[j].Quantity
	})

	if len(top) > limit {
		top = top[:limit]
	}
	return top
}
