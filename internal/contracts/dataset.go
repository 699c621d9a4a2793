package contracts

// Product is a catalog entry keyed by SKU
type Product struct {
	SKU           string  `json:"sku" yaml:"sku"`
	Name          string  `json:"name,omitempty" yaml:"name,omitempty"`
	Category      string  `json:"category,omitempty" yaml:"category,omitempty"`
	PurchasePrice float64 `json:"purchase_price" yaml:"purchase_price"`
}

// Seller is a member of the sales staff
type Seller struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	StartDate string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	Position  string `json:"position,omitempty" yaml:"position,omitempty"`
}

// DisplayName returns "First Last"
func (s Seller) DisplayName() string {
	return s.FirstName + " " + s.LastName
}

// Customer is identified by ID; the remaining fields are informational
type Customer struct {
	ID        string `json:"id" yaml:"id"`
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Item is one receipt line
type Item struct {
	SKU       string  `json:"sku" yaml:"sku"`
	SalePrice float64 `json:"sale_price" yaml:"sale_price"`
	Quantity  int     `json:"quantity" yaml:"quantity"`
	Discount  float64 `json:"discount" yaml:"discount"` // percent, 0-100
}

// PurchaseRecord is a single receipt
type PurchaseRecord struct {
	ReceiptID     string  `json:"receipt_id,omitempty" yaml:"receipt_id,omitempty"`
	Date          string  `json:"date" yaml:"date"` // YYYY-MM-DD
	SellerID      string  `json:"seller_id" yaml:"seller_id"`
	CustomerID    string  `json:"customer_id" yaml:"customer_id"`
	Items         []Item  `json:"items" yaml:"items"`
	TotalAmount   float64 `json:"total_amount" yaml:"total_amount"`
	TotalDiscount float64 `json:"total_discount,omitempty" yaml:"total_discount,omitempty"`
}

// Month returns the YYYY-MM prefix of the record date
func (r PurchaseRecord) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

// Dataset is the full denormalized input of one analysis
// The engine treats it as read-only for the duration of a call.
type Dataset struct {
	Customers       []Customer       `json:"customers" yaml:"customers"`
	Products        []Product        `json:"products" yaml:"products"`
	Sellers         []Seller         `json:"sellers" yaml:"sellers"`
	PurchaseRecords []PurchaseRecord `json:"purchase_records" yaml:"purchase_records"`
}

// ProductIndex maps SKU to product; the first catalog entry for a SKU wins.
func (d *Dataset) ProductIndex() map[string]Product {
	return IndexProducts(d.Products)
}

// IndexProducts builds a first-match SKU lookup
func IndexProducts(products []Product) map[string]Product {
	index := make(map[string]Product, len(products))
	for _, p := range products {
		if _, exists := index[p.SKU]; exists {
			continue
		}
		index[p.SKU] = p
	}
	return index
}

// LineRevenue is sale_price * quantity * (1 - discount/100)
func LineRevenue(item Item) float64 {
	return item.SalePrice * float64(item.Quantity) * (1 - item.Discount/100)
}
