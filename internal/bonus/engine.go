package bonus

import (
	"fmt"

	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/metrics"
)

// Rule maps the shared context to a single award
type Rule func(c *Context) contracts.BonusResult

// Options carries the injected strategies of the engine
type Options struct {
	CalculateProfit   contracts.ProfitFunc
	AccumulateMetrics metrics.AccumulateFunc
}

// DefaultOptions wires the reference profit formula and accumulator
func DefaultOptions() Options {
	return Options{
		CalculateProfit:   SimpleProfit,
		AccumulateMetrics: metrics.Accumulate,
	}
}

// Context is built once per call and handed to every rule
type Context struct {
	RecordsBySeller   *metrics.Groups[string, contracts.PurchaseRecord]
	RecordsByCustomer *metrics.Groups[string, contracts.PurchaseRecord]
	RecordsByProduct  *metrics.Groups[string, contracts.PurchaseRecord]

	Stats *metrics.Aggregates

	Customers []contracts.Customer
	Products  []contracts.Product
	Sellers   []contracts.Seller

	CalculateProfit contracts.ProfitFunc

	catalog map[string]contracts.Product
}

// Product resolves a SKU against the catalog (first match)
func (c *Context) Product(sku string) (contracts.Product, bool) {
	p, ok := c.catalog[sku]
	return p, ok
}

// NewContext groups the records and runs the accumulator
func NewContext(ds *contracts.Dataset, opts Options) *Context {
	records := ds.PurchaseRecords

	byProduct := &metrics.Groups[string, contracts.PurchaseRecord]{}
	for _, r := range records {
		for _, item := range r.Items {
			byProduct.Add(item.SKU, r)
		}
	}

	return &Context{
		RecordsBySeller:   metrics.GroupBy(records, func(r contracts.PurchaseRecord) string { return r.SellerID }),
		RecordsByCustomer: metrics.GroupBy(records, func(r contracts.PurchaseRecord) string { return r.CustomerID }),
		RecordsByProduct:  byProduct,
		Stats:             opts.AccumulateMetrics(records, opts.CalculateProfit, ds.Products),
		Customers:         ds.Customers,
		Products:          ds.Products,
		Sellers:           ds.Sellers,
		CalculateProfit:   opts.CalculateProfit,
		catalog:           ds.ProductIndex(),
	}
}

func validateOptions(opts Options) error {
	if opts.CalculateProfit == nil {
		return contracts.InvalidOptions("calculate_profit", "strategy function is required")
	}
	if opts.AccumulateMetrics == nil {
		return contracts.InvalidOptions("accumulate_metrics", "strategy function is required")
	}
	return nil
}

// CalculateSpecialBonuses applies every rule to one shared context.
// Results follow the order of rules, one result per rule.
func CalculateSpecialBonuses(ds *contracts.Dataset, opts Options, rules []Rule) ([]contracts.BonusResult, error) {
	if err := contracts.ValidateDataset(ds); err != nil {
		return nil, err
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	for i, rule := range rules {
		if rule == nil {
			return nil, contracts.InvalidOptions("bonus_functions", fmt.Sprintf("rule %d is nil", i))
		}
	}

	ctx := NewContext(ds, opts)

	results := make([]contracts.BonusResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, rule(ctx))
	}

	return results, nil
}

// SimpleProfit is the reference profit formula: line revenue minus cost
func SimpleProfit(item contracts.Item, product contracts.Product) float64 {
	return contracts.LineRevenue(item) - product.PurchasePrice*float64(item.Quantity)
}
