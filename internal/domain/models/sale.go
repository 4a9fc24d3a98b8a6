package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is an immutable ledger row: a copy of the product at sale time plus sale metadata.
type SaleRecord struct {
	ProductID     string
	Type          ProductType
	Gender        Gender
	Brand         string
	Name          string
	Color         string
	Cost          decimal.Decimal
	ExpectedPrice decimal.Decimal
	TripNumber    string
	// Sizes lists the sizes that were on offer when the sale happened.
	Sizes       string
	SellingDate time.Time
	FinalPrice  decimal.Decimal
	Customer    string
	Notes       string
	SizeSold    string
}

// Sale captures the operator input for Process Sale.
type Sale struct {
	ProductID   string
	Size        string
	SellingDate string
	FinalPrice  string
	Customer    string
	Notes       string
}
