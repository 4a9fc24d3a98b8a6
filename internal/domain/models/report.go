package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpectedProfitRow aggregates catalog value for a single trip.
type ExpectedProfitRow struct {
	TripNumber           string          `json:"trip_number"`
	GrossCost            decimal.Decimal `json:"gross_cost"`
	ExpectedSellingPrice decimal.Decimal `json:"expected_selling_price"`
	NumberOfProducts     int             `json:"number_of_products"`
	ExpectedProfit       decimal.Decimal `json:"expected_profit"`
}

// NetProfitSummary is the realised result of the sales ledger over a date range.
type NetProfitSummary struct {
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProductsSold int             `json:"products_sold"`
}

// ProfitSnapshot is the periodic summary archived to MongoDB.
type ProfitSnapshot struct {
	TakenAt        time.Time           `json:"taken_at"`
	Week           NetProfitSummary    `json:"week"`
	Expected       []ExpectedProfitRow `json:"expected"`
	UnitsAvailable int                 `json:"units_available"`
	CreatedAt      time.Time           `json:"created_at"`
}
