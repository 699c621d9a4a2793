package bonus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salesbonus/internal/bonusconfig"
	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/metrics"
)

func bonusDataset() *contracts.Dataset {
	return &contracts.Dataset{
		Customers: []contracts.Customer{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}},
		Products: []contracts.Product{
			{SKU: "A", PurchasePrice: 10},
			{SKU: "B", PurchasePrice: 5},
		},
		Sellers: []contracts.Seller{
			{ID: "s1", FirstName: "Ivan", LastName: "Petrov"},
			{ID: "s2", FirstName: "Anna", LastName: "Sokolova"},
			{ID: "s3", FirstName: "Oleg", LastName: "Lebedev"},
		},
		PurchaseRecords: []contracts.PurchaseRecord{
			{ReceiptID: "r1", Date: "2024-01-10", SellerID: "s1", CustomerID: "c1", TotalAmount: 20,
				Items: []contracts.Item{{SKU: "A", SalePrice: 20, Quantity: 1}}},
			{ReceiptID: "r2", Date: "2024-02-10", SellerID: "s1", CustomerID: "c2", TotalAmount: 20.4,
				Items: []contracts.Item{{SKU: "A", SalePrice: 20.4, Quantity: 1}}},
			{ReceiptID: "r3", Date: "2024-01-15", SellerID: "s2", CustomerID: "c1", TotalAmount: 105,
				Items: []contracts.Item{{SKU: "B", SalePrice: 105, Quantity: 1}}},
			{ReceiptID: "r4", Date: "2024-02-15", SellerID: "s2", CustomerID: "c3", TotalAmount: 55,
				Items: []contracts.Item{{SKU: "B", SalePrice: 55, Quantity: 1}}},
			{ReceiptID: "r5", Date: "2024-01-20", SellerID: "s3", CustomerID: "c2", TotalAmount: 60,
				Items: []contracts.Item{{SKU: "A", SalePrice: 30, Quantity: 2}}},
		},
	}
}

func TestCalculateSpecialBonuses_DefaultRules(t *testing.T) {
	results, err := CalculateSpecialBonuses(bonusDataset(), DefaultOptions(), DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, []contracts.BonusResult{
		// c1 spent 125; s2 is its biggest seller
		{Category: CategoryBestCustomerSeller, SellerID: "s2", Bonus: 6.25},
		// s1 and s2 both have c1 as best customer; s1 was seen first
		{Category: CategoryBestCustomerRetention, SellerID: "s1", Bonus: 1000},
		{Category: CategoryLargestSingleSale, SellerID: "s2", Bonus: 10.5},
		// s2: profit 150 over 2 items
		{Category: CategoryHighestAverageProfit, SellerID: "s2", Bonus: 7.5},
		// s1: 10 -> 10.4 per item, +4% month over month
		{Category: CategoryStableGrowth, SellerID: "s1", Bonus: 1.02},
	}, results)
}

func TestCalculateSpecialBonuses_RuleOrder(t *testing.T) {
	rules := []Rule{
		StableGrowth(metrics.DefaultTolerance, DefaultStableGrowthPct),
		LargestSingleSale(0.5),
	}

	results, err := CalculateSpecialBonuses(bonusDataset(), DefaultOptions(), rules)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, CategoryStableGrowth, results[0].Category)
	assert.Equal(t, CategoryLargestSingleSale, results[1].Category)
	assert.Equal(t, 52.5, results[1].Bonus)
}

func TestCalculateSpecialBonuses_EmptyRules(t *testing.T) {
	results, err := CalculateSpecialBonuses(bonusDataset(), DefaultOptions(), nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestStableGrowth_NoWinner(t *testing.T) {
	ds := bonusDataset()
	// s1 jumps +50% in February
	ds.PurchaseRecords[1].Items[0].SalePrice = 25

	results, err := CalculateSpecialBonuses(ds, DefaultOptions(), []Rule{StableGrowth(metrics.DefaultTolerance, DefaultStableGrowthPct)})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].HasWinner())
	assert.Equal(t, "", results[0].SellerID)
	assert.Equal(t, 0.0, results[0].Bonus)

	// a looser tolerance accepts the jump
	results, err = CalculateSpecialBonuses(ds, DefaultOptions(), []Rule{StableGrowth(0.6, DefaultStableGrowthPct)})
	require.NoError(t, err)
	assert.Equal(t, "s1", results[0].SellerID)
}

func TestLargestSingleSale_TieKeepsFirst(t *testing.T) {
	ds := bonusDataset()
	ds.PurchaseRecords = append(ds.PurchaseRecords, contracts.PurchaseRecord{
		ReceiptID: "r6", Date: "2024-03-01", SellerID: "s3", CustomerID: "c3", TotalAmount: 105,
		Items: []contracts.Item{{SKU: "B", SalePrice: 105, Quantity: 1}},
	})

	results, err := CalculateSpecialBonuses(ds, DefaultOptions(), []Rule{LargestSingleSale(DefaultLargestSalePct)})
	require.NoError(t, err)
	assert.Equal(t, "s2", results[0].SellerID)
}

func TestBestCustomerSeller_TieFollowsCustomerPurchaseOrder(t *testing.T) {
	ds := bonusDataset()
	// s1 is seen first overall, but c9 bought from s2 before s1; both total 50
	ds.Customers = append(ds.Customers, contracts.Customer{ID: "c9"})
	ds.PurchaseRecords = []contracts.PurchaseRecord{
		{ReceiptID: "t0", Date: "2024-01-01", SellerID: "s1", CustomerID: "c2", TotalAmount: 10,
			Items: []contracts.Item{{SKU: "A", SalePrice: 10, Quantity: 1}}},
		{ReceiptID: "t1", Date: "2024-01-02", SellerID: "s2", CustomerID: "c9", TotalAmount: 40,
			Items: []contracts.Item{{SKU: "A", SalePrice: 40, Quantity: 1}}},
		{ReceiptID: "t2", Date: "2024-01-03", SellerID: "s1", CustomerID: "c9", TotalAmount: 40,
			Items: []contracts.Item{{SKU: "A", SalePrice: 40, Quantity: 1}}},
		{ReceiptID: "t3", Date: "2024-01-04", SellerID: "s2", CustomerID: "c3", TotalAmount: 10,
			Items: []contracts.Item{{SKU: "A", SalePrice: 10, Quantity: 1}}},
	}

	results, err := CalculateSpecialBonuses(ds, DefaultOptions(), []Rule{BestCustomerSeller(DefaultBestCustomerPct)})
	require.NoError(t, err)
	assert.Equal(t, "s2", results[0].SellerID)
	assert.Equal(t, 4.0, results[0].Bonus)
}

func TestHighestAverageProfit_TieKeepsFirstSeen(t *testing.T) {
	ds := bonusDataset()
	ds.PurchaseRecords = []contracts.PurchaseRecord{
		{ReceiptID: "t1", Date: "2024-01-01", SellerID: "s3", CustomerID: "c1", TotalAmount: 30,
			Items: []contracts.Item{{SKU: "A", SalePrice: 30, Quantity: 1}}},
		{ReceiptID: "t2", Date: "2024-01-02", SellerID: "s1", CustomerID: "c2", TotalAmount: 25,
			Items: []contracts.Item{{SKU: "B", SalePrice: 25, Quantity: 1}}},
	}

	results, err := CalculateSpecialBonuses(ds, DefaultOptions(), []Rule{HighestAverageProfit(DefaultAverageProfitPct)})
	require.NoError(t, err)
	// both earn 20 per item; s3 appears first in the records
	assert.Equal(t, "s3", results[0].SellerID)
	assert.Equal(t, 2.0, results[0].Bonus)
}

func TestCalculateSpecialBonuses_InjectedProfit(t *testing.T) {
	calls := 0
	opts := DefaultOptions()
	opts.CalculateProfit = func(item contracts.Item, product contracts.Product) float64 {
		calls++
		return 1
	}

	results, err := CalculateSpecialBonuses(bonusDataset(), opts, []Rule{HighestAverageProfit(DefaultAverageProfitPct)})
	require.NoError(t, err)

	// every seller averages 1 per item; first seen wins
	assert.Equal(t, "s1", results[0].SellerID)
	assert.Equal(t, 0.1, results[0].Bonus)
	assert.Equal(t, 5, calls)
}

func TestCalculateSpecialBonuses_NoPurchases(t *testing.T) {
	ds := bonusDataset()
	ds.PurchaseRecords = []contracts.PurchaseRecord{{SellerID: "s1", CustomerID: "c1", Items: []contracts.Item{{SKU: "ZZZ", Quantity: 1}}}}

	results, err := CalculateSpecialBonuses(ds, DefaultOptions(), DefaultRules())
	require.NoError(t, err)
	require.Len(t, results, 5)

	// only catalog items feed the aggregates
	assert.False(t, results[0].HasWinner())
	assert.False(t, results[1].HasWinner())
	assert.False(t, results[3].HasWinner())
}

func TestCalculateSpecialBonuses_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ds      *contracts.Dataset
		opts    Options
		rules   []Rule
		wantErr error
	}{
		{"nil dataset", nil, DefaultOptions(), DefaultRules(), contracts.ErrInvalidDataset},
		{"no customers", func() *contracts.Dataset { d := bonusDataset(); d.Customers = nil; return d }(), DefaultOptions(), DefaultRules(), contracts.ErrInvalidDataset},
		{"no purchase records", func() *contracts.Dataset { d := bonusDataset(); d.PurchaseRecords = nil; return d }(), DefaultOptions(), DefaultRules(), contracts.ErrInvalidDataset},
		{"missing profit", bonusDataset(), Options{AccumulateMetrics: metrics.Accumulate}, DefaultRules(), contracts.ErrInvalidOptions},
		{"missing accumulator", bonusDataset(), Options{CalculateProfit: SimpleProfit}, DefaultRules(), contracts.ErrInvalidOptions},
		{"nil rule", bonusDataset(), DefaultOptions(), []Rule{DefaultRules()[0], nil}, contracts.ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := CalculateSpecialBonuses(tt.ds, tt.opts, tt.rules)
			assert.Nil(t, results)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMonthlyAverageProfit(t *testing.T) {
	ds := bonusDataset()
	ctx := NewContext(ds, DefaultOptions())

	records := append([]contracts.PurchaseRecord{}, ctx.RecordsBySeller.Get("s2")...)
	// out-of-order month and an unknown SKU
	records = append([]contracts.PurchaseRecord{{
		Date: "2024-03-01", SellerID: "s2",
		Items: []contracts.Item{{SKU: "NOPE", SalePrice: 10, Quantity: 1}},
	}}, records...)

	series := MonthlyAverageProfit(ctx, records)
	assert.Equal(t, []float64{100, 50, 0}, series)
}

func TestSimpleProfit(t *testing.T) {
	item := contracts.Item{SKU: "A", SalePrice: 50, Quantity: 2, Discount: 10}
	assert.InDelta(t, 70.0, SimpleProfit(item, contracts.Product{PurchasePrice: 10}), 1e-9)
}

func TestRulesFromConfig(t *testing.T) {
	rules, err := RulesFromConfig(nil)
	require.NoError(t, err)
	assert.Len(t, rules, 5)

	amount := 50.0
	cfg := bonusconfig.Default()
	cfg.Rules = []bonusconfig.RuleSpec{
		{Name: CategoryBestCustomerRetention, Amount: &amount},
		{Name: CategoryLargestSingleSale},
	}

	rules, err = RulesFromConfig(cfg)
	require.NoError(t, err)

	results, err := CalculateSpecialBonuses(bonusDataset(), DefaultOptions(), rules)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, contracts.BonusResult{Category: CategoryBestCustomerRetention, SellerID: "s1", Bonus: 50}, results[0])
	assert.Equal(t, 10.5, results[1].Bonus)

	cfg.Rules = append(cfg.Rules, bonusconfig.RuleSpec{Name: "mystery"})
	_, err = RulesFromConfig(cfg)
	assert.Error(t, err)
}

func TestRuleNames_AllRegistered(t *testing.T) {
	for _, name := range RuleNames() {
		_, ok := registry[name]
		assert.True(t, ok, name)
	}
	assert.Len(t, registry, len(RuleNames()))
}
