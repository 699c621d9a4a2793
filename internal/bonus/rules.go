package bonus

import (
	"sort"

	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/metrics"
)

// Award categories of the reference rules
const (
	CategoryBestCustomerSeller    = "best_customer_seller"
	CategoryBestCustomerRetention = "best_customer_retention"
	CategoryLargestSingleSale     = "largest_single_sale"
	CategoryHighestAverageProfit  = "highest_average_profit"
	CategoryStableGrowth          = "stable_growth"
)

// Reference parameters
const (
	DefaultBestCustomerPct  = 0.05
	DefaultRetentionAmount  = 1000.0
	DefaultLargestSalePct   = 0.10
	DefaultAverageProfitPct = 0.10
	DefaultStableGrowthPct  = 0.10
)

// DefaultRules returns the five reference rules in their canonical order
func DefaultRules() []Rule {
	return []Rule{
		BestCustomerSeller(DefaultBestCustomerPct),
		BestCustomerRetention(DefaultRetentionAmount),
		LargestSingleSale(DefaultLargestSalePct),
		HighestAverageProfit(DefaultAverageProfitPct),
		StableGrowth(metrics.DefaultTolerance, DefaultStableGrowthPct),
	}
}

// BestCustomerSeller rewards the top seller of the highest-revenue customer
// with pct of that customer's revenue.
func BestCustomerSeller(pct float64) Rule {
	return func(c *Context) contracts.BonusResult {
		result := contracts.BonusResult{Category: CategoryBestCustomerSeller}

		var bestCustomer *metrics.CustomerAggregate
		var bestCustomerID string
		for _, id := range c.Stats.CustomerOrder {
			customer := c.Stats.Customers[id]
			if bestCustomer == nil || customer.Revenue > bestCustomer.Revenue {
				bestCustomer = customer
				bestCustomerID = id
			}
		}
		if bestCustomer == nil {
			return result
		}

		// sellers in the order this customer first bought from them
		var bestSeller *metrics.SellerAggregate
		seen := make(metrics.IDSet)
		for _, r := range c.RecordsByCustomer.Get(bestCustomerID) {
			id := r.SellerID
			if seen.Has(id) || !bestCustomer.Sellers.Has(id) {
				continue
			}
			seen.Add(id)

			seller := c.Stats.Sellers[id]
			if bestSeller == nil || seller.Revenue > bestSeller.Revenue {
				bestSeller = seller
				result.SellerID = id
			}
		}

		result.Bonus = contracts.Round2(bestCustomer.Revenue * pct)
		return result
	}
}

// BestCustomerRetention rewards the seller whose best customer spent the
// most with a fixed amount.
func BestCustomerRetention(amount float64) Rule {
	return func(c *Context) contracts.BonusResult {
		result := contracts.BonusResult{Category: CategoryBestCustomerRetention}

		found := false
		var best float64
		for _, sellerID := range c.Stats.SellerOrder {
			seller := c.Stats.Sellers[sellerID]

			topFound := false
			var top float64
			for _, customerID := range c.Stats.CustomerOrder {
				if !seller.Customers.Has(customerID) {
					continue
				}
				revenue := c.Stats.Customers[customerID].Revenue
				if !topFound || revenue > top {
					top = revenue
					topFound = true
				}
			}
			if !topFound {
				continue
			}

			if !found || top > best {
				best = top
				found = true
				result.SellerID = sellerID
			}
		}

		if found {
			result.Bonus = contracts.Round2(amount)
		}
		return result
	}
}

// LargestSingleSale rewards the seller of the largest receipt with pct of its total
func LargestSingleSale(pct float64) Rule {
	return func(c *Context) contracts.BonusResult {
		result := contracts.BonusResult{Category: CategoryLargestSingleSale}

		var best *contracts.PurchaseRecord
		c.RecordsBySeller.Each(func(sellerID string, records []contracts.PurchaseRecord) {
			for i := range records {
				if best == nil || records[i].TotalAmount > best.TotalAmount {
					best = &records[i]
				}
			}
		})
		if best == nil {
			return result
		}

		result.SellerID = best.SellerID
		result.Bonus = contracts.Round2(best.TotalAmount * pct)
		return result
	}
}

// HighestAverageProfit rewards the best profit-per-item seller with pct of that average
func HighestAverageProfit(pct float64) Rule {
	return func(c *Context) contracts.BonusResult {
		result := contracts.BonusResult{Category: CategoryHighestAverageProfit}

		found := false
		var best float64
		for _, id := range c.Stats.SellerOrder {
			avg := c.Stats.Sellers[id].AverageProfit()
			if !found || avg > best {
				best = avg
				found = true
				result.SellerID = id
			}
		}

		if found {
			result.Bonus = contracts.Round2(best * pct)
		}
		return result
	}
}

// StableGrowth rewards, among sellers whose monthly average item profit grows
// steadily, the one with the highest overall average profit. No qualifying
// seller yields an award without a winner and a zero bonus.
func StableGrowth(tolerance, pct float64) Rule {
	return func(c *Context) contracts.BonusResult {
		result := contracts.BonusResult{Category: CategoryStableGrowth}

		found := false
		var best float64
		c.RecordsBySeller.Each(func(sellerID string, records []contracts.PurchaseRecord) {
			series := MonthlyAverageProfit(c, records)
			trend := metrics.AnalyzeSequence(series, tolerance)
			if !trend.IsStable || !trend.IsIncreasing {
				return
			}

			var avg float64
			if stats, ok := c.Stats.Sellers[sellerID]; ok {
				avg = stats.AverageProfit()
			}
			if !found || avg > best {
				best = avg
				found = true
				result.SellerID = sellerID
			}
		})

		if found {
			result.Bonus = contracts.Round2(best * pct)
		}
		return result
	}
}

// MonthlyAverageProfit returns the average item profit per calendar month,
// months in chronological order. Items with unknown SKUs are ignored; a month
// without known items averages to 0.
func MonthlyAverageProfit(c *Context, records []contracts.PurchaseRecord) []float64 {
	byMonth := metrics.GroupBy(records, func(r contracts.PurchaseRecord) string { return r.Month() })

	months := append([]string(nil), byMonth.Keys()...)
	sort.Strings(months)

	series := make([]float64, 0, len(months))
	for _, month := range months {
		var sum float64
		var count int
		for _, record := range byMonth.Get(month) {
			for _, item := range record.Items {
				product, ok := c.Product(item.SKU)
				if !ok {
					continue
				}
				sum += c.CalculateProfit(item, product)
				count++
			}
		}

		avg := 0.0
		if count > 0 {
			avg = sum / float64(count)
		}
		series = append(series, avg)
	}

	return series
}
