package metrics

import (
	"github.com/wonny/salesbonus/internal/contracts"
)

// IDSet is an unordered set of ids
type IDSet map[string]struct{}

// Add inserts id
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Has reports membership
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// SellerAggregate accumulates one seller's sales
type SellerAggregate struct {
	Revenue   float64
	Profit    float64
	Items     []contracts.Item
	Customers IDSet
}

// AverageProfit is profit per item sold, with at least one item as divisor
func (a *SellerAggregate) AverageProfit() float64 {
	n := len(a.Items)
	if n < 1 {
		n = 1
	}
	return a.Profit / float64(n)
}

// CustomerAggregate accumulates one customer's purchases
type CustomerAggregate struct {
	Revenue float64
	Profit  float64
	Sellers IDSet
}

// ProductAggregate accumulates one SKU's sales
type ProductAggregate struct {
	Quantity int
	Revenue  float64
}

// Aggregates is the output of one accumulation pass.
// SellerOrder / CustomerOrder record first-seen order; rule tie-breaks
// iterate them instead of the maps.
type Aggregates struct {
	Sellers   map[string]*SellerAggregate
	Customers map[string]*CustomerAggregate
	Products  map[string]*ProductAggregate

	SellerOrder   []string
	CustomerOrder []string
	ProductOrder  []string
}

// AccumulateFunc is the signature of Accumulate, injectable into the bonus engine
type AccumulateFunc func(records []contracts.PurchaseRecord, profit contracts.ProfitFunc, products []contracts.Product) *Aggregates

// Accumulate folds purchase records into per-seller, per-customer and
// per-product aggregates. Items whose SKU is not in the catalog are skipped.
// Buckets are created on first reference only.
func Accumulate(records []contracts.PurchaseRecord, profit contracts.ProfitFunc, products []contracts.Product) *Aggregates {
	agg := &Aggregates{
		Sellers:   make(map[string]*SellerAggregate),
		Customers: make(map[string]*CustomerAggregate),
		Products:  make(map[string]*ProductAggregate),
	}
	catalog := contracts.IndexProducts(products)

	for _, record := range records {
		for _, item := range record.Items {
			product, ok := catalog[item.SKU]
			if !ok {
				continue
			}

			revenue := contracts.LineRevenue(item)
			itemProfit := profit(item, product)

			seller := agg.seller(record.SellerID)
			seller.Revenue += revenue
			seller.Profit += itemProfit
			seller.Items = append(seller.Items, item)
			seller.Customers.Add(record.CustomerID)

			customer := agg.customer(record.CustomerID)
			customer.Revenue += revenue
			customer.Profit += itemProfit
			customer.Sellers.Add(record.SellerID)

			p := agg.product(item.SKU)
			p.Quantity += item.Quantity
			p.Revenue += revenue
		}
	}

	return agg
}

func (a *Aggregates) seller(id string) *SellerAggregate {
	s, ok := a.Sellers[id]
	if !ok {
		s = &SellerAggregate{Customers: IDSet{}}
		a.Sellers[id] = s
		a.SellerOrder = append(a.SellerOrder, id)
	}
	return s
}

func (a *Aggregates) customer(id string) *CustomerAggregate {
	c, ok := a.Customers[id]
	if !ok {
		c = &CustomerAggregate{Sellers: IDSet{}}
		a.Customers[id] = c
		a.CustomerOrder = append(a.CustomerOrder, id)
	}
	return c
}

func (a *Aggregates) product(sku string) *ProductAggregate {
	p, ok := a.Products[sku]
	if !ok {
		p = &ProductAggregate{}
		a.Products[sku] = p
		a.ProductOrder = append(a.ProductOrder, sku)
	}
	return p
}

// TotalSellerRevenue sums revenue over all seller buckets
func (a *Aggregates) TotalSellerRevenue() float64 {
	var total float64
	for _, id := range a.SellerOrder {
		total += a.Sellers[id].Revenue
	}
	return total
}
