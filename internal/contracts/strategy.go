package contracts

// ⭐ Strategy signatures injected by callers. The engines are generic over
// any function with these shapes.

// ProfitFunc computes the profit of one item line
type ProfitFunc func(item Item, product Product) float64

// RevenueFunc computes the revenue of one item line
type RevenueFunc func(item Item, product Product) float64

// BonusFunc computes the primary bonus of a seller from its 0-based rank.
// rank == -1 means "not ranked".
type BonusFunc func(seller SellerStats, rank int, total int) float64

// SellerStats are the running totals of one seller built by the ranking stage
type SellerStats struct {
	ID         string
	Name       string
	Revenue    float64
	Profit     float64
	SalesCount int

	// ProductsSold holds quantity per SKU; SKUOrder keeps first-seen order.
	ProductsSold map[string]int
	SKUOrder     []string
}

// TopProduct is one entry of a seller's best-selling list
type TopProduct struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// SellerReport is the ranked output row for one seller
type SellerReport struct {
	SellerID    string       `json:"seller_id"`
	Name        string       `json:"name"`
	Revenue     float64      `json:"revenue"`
	Profit      float64      `json:"profit"`
	SalesCount  int          `json:"sales_count"`
	TopProducts []TopProduct `json:"top_products"`
	Bonus       float64      `json:"bonus"`
}

// BonusResult is one award produced by a bonus rule.
// An empty SellerID means the rule found no winner.
type BonusResult struct {
	Category string  `json:"category"`
	SellerID string  `json:"seller_id,omitempty"`
	Bonus    float64 `json:"bonus"`
}

// HasWinner reports whether the rule selected a seller
func (b BonusResult) HasWinner() bool {
	return b.SellerID != ""
}
