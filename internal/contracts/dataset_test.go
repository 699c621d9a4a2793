package contracts

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func validDataset() *Dataset {
	return &Dataset{
		Customers:       []Customer{{ID: "c1"}},
		Products:        []Product{{SKU: "A", PurchasePrice: 1}},
		Sellers:         []Seller{{ID: "s1", FirstName: "Ivan", LastName: "Ivanov"}},
		PurchaseRecords: []PurchaseRecord{{SellerID: "s1", CustomerID: "c1"}},
	}
}

func TestValidateDataset(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Dataset) *Dataset
		field  string
	}{
		{"nil", func(d *Dataset) *Dataset { return nil }, ""},
		{"no customers", func(d *Dataset) *Dataset { d.Customers = nil; return d }, "customers"},
		{"empty products", func(d *Dataset) *Dataset { d.Products = []Product{}; return d }, "products"},
		{"no sellers", func(d *Dataset) *Dataset { d.Sellers = nil; return d }, "sellers"},
		{"no records", func(d *Dataset) *Dataset { d.PurchaseRecords = nil; return d }, "purchase_records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataset(tt.mutate(validDataset()))
			if !errors.Is(err, ErrInvalidDataset) {
				t.Fatalf("expected ErrInvalidDataset, got %v", err)
			}
			if errors.Is(err, ErrInvalidOptions) {
				t.Error("dataset error must not match ErrInvalidOptions")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}

	if err := ValidateDataset(validDataset()); err != nil {
		t.Errorf("valid dataset rejected: %v", err)
	}
}

func TestInvalidOptions(t *testing.T) {
	err := InvalidOptions("calculate_bonus", "strategy function is required")
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	if got := err.Error(); got != "invalid options: calculate_bonus: strategy function is required" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestIndexProducts_FirstMatchWins(t *testing.T) {
	index := IndexProducts([]Product{
		{SKU: "A", PurchasePrice: 1},
		{SKU: "B", PurchasePrice: 2},
		{SKU: "A", PurchasePrice: 99},
	})

	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(index))
	}
	if index["A"].PurchasePrice != 1 {
		t.Errorf("expected first A (price 1), got %v", index["A"].PurchasePrice)
	}
}

func TestLineRevenue(t *testing.T) {
	tests := []struct {
		item Item
		want float64
	}{
		{Item{SalePrice: 20, Quantity: 2}, 40},
		{Item{SalePrice: 50, Quantity: 1, Discount: 10}, 45},
		{Item{SalePrice: 100, Quantity: 3, Discount: 100}, 0},
		{Item{SalePrice: 10, Quantity: 0, Discount: 5}, 0},
	}

	for _, tc := range tests {
		if got := LineRevenue(tc.item); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("LineRevenue(%+v) = %v, want %v", tc.item, got, tc.want)
		}
	}
}

func TestPurchaseRecord_Month(t *testing.T) {
	if got := (PurchaseRecord{Date: "2024-03-17"}).Month(); got != "2024-03" {
		t.Errorf("Month() = %q, want 2024-03", got)
	}
	if got := (PurchaseRecord{Date: "2024"}).Month(); got != "2024" {
		t.Errorf("short date Month() = %q", got)
	}
}

func TestSeller_DisplayName(t *testing.T) {
	s := Seller{FirstName: "Anna", LastName: "Sokolova"}
	if got := s.DisplayName(); got != "Anna Sokolova" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{-1.005, -1.01},
		{10, 10},
		{0.125, 0.13},
		{123.454, 123.45},
	}

	for _, tc := range tests {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if !math.IsNaN(Round2(math.NaN())) {
		t.Error("NaN should pass through")
	}
	if !math.IsInf(Round2(math.Inf(1)), 1) {
		t.Error("+Inf should pass through")
	}
}

func TestRun_TotalPayout(t *testing.T) {
	run := &Run{
		ID:        "run-1",
		CreatedAt: time.Now(),
		Sellers:   []SellerReport{{Bonus: 10.1}, {Bonus: 0.2}},
		Bonuses:   []BonusResult{{Category: "x", SellerID: "s1", Bonus: 1000}, {Category: "y"}},
	}

	if got := run.TotalPayout(); got != 1010.3 {
		t.Errorf("TotalPayout() = %v, want 1010.3", got)
	}
}

func TestBonusResult_JSON(t *testing.T) {
	data, err := json.Marshal(BonusResult{Category: "stable_growth"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"category":"stable_growth","bonus":0}` {
		t.Errorf("unexpected json %s", data)
	}
}
