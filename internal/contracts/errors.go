package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDataset: a catalog is missing or empty
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrInvalidOptions: a required strategy was not supplied
	ErrInvalidOptions = errors.New("invalid options")
)

// ValidationError describes a structural input failure.
// errors.Is(err, ErrInvalidDataset) / ErrInvalidOptions works through Unwrap.
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalidDataset(field, message string) error {
	return &ValidationError{Kind: ErrInvalidDataset, Field: field, Message: message}
}

// InvalidOptions builds an ErrInvalidOptions failure for a missing strategy
func InvalidOptions(field, message string) error {
	return &ValidationError{Kind: ErrInvalidOptions, Field: field, Message: message}
}

// ValidateDataset checks that all four catalogs are present and non-empty.
// Individual records are not inspected: unknown references and negative
// values are tolerated by the aggregation.
func ValidateDataset(ds *Dataset) error {
	if ds == nil {
		return invalidDataset("", "dataset is required")
	}
	if len(ds.Customers) == 0 {
		return invalidDataset("customers", "must be a non-empty list")
	}
	if len(ds.Products) == 0 {
		return invalidDataset("products", "must be a non-empty list")
	}
	if len(ds.Sellers) == 0 {
		return invalidDataset("sellers", "must be a non-empty list")
	}
	if len(ds.PurchaseRecords) == 0 {
		return invalidDataset("purchase_records", "must be a non-empty list")
	}
	return nil
}
