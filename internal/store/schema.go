package store

// Column names shared by the three tables.
const (
	ColID            = "ID"
	ColType          = "Type"
	ColGender        = "Gender"
	ColBrand         = "Brand"
	ColName          = "Name"
	ColColor         = "Color"
	ColCost          = "Cost (USD)"
	ColExpectedPrice = "Expected Price (USD)"
	ColTrip          = "Trip #"
	ColSizes         = "Sizes"
	ColCount         = "Count"
	ColSellingDate   = "Selling Date"
	ColFinalPrice    = "Final Price (USD)"
	ColCustomer      = "Customer"
	ColNotes         = "Notes"
	ColSizeSold      = "Size Sold"
)

// DateLayout is the on-disk format of Selling Date.
const DateLayout = "2006-01-02"

// Layout selects how a product's sizes are laid out in the catalog and availability tables.
type Layout string

const (
	// LayoutPerSize writes one row per (product, size) with Count = units of that size.
	LayoutPerSize Layout = "per-size"
	// LayoutJoined writes one row per product, Sizes like "9 (2), 10" and Count = total units.
	LayoutJoined Layout = "joined"
)

// Tables names the three tables inside the repository.
type Tables struct {
	Catalog      string
	Availability string
	Sales        string
}

// DefaultTables matches the file names used by the original spreadsheets.
var DefaultTables = Tables{
	Catalog:      "products",
	Availability: "available",
	Sales:        "sold",
}

var productColumns = []string{
	ColID, ColType, ColGender, ColBrand, ColName, ColColor,
	ColCost, ColExpectedPrice, ColTrip, ColSizes,
}

// CatalogHeader is the canonical header of the catalog table.
var CatalogHeader = append(append([]string{}, productColumns...), ColCount)

// AvailabilityHeader is the canonical header of the availability table.
var AvailabilityHeader = append(append([]string{}, productColumns...), ColCount)

// SalesHeader is the canonical header of the sales ledger.
var SalesHeader = append(append([]string{}, productColumns...),
	ColSellingDate, ColFinalPrice, ColCustomer, ColNotes, ColSizeSold)

// Older ledgers were written with these column names.
var columnAliases = map[string][]string{
	ColFinalPrice: {"Final Price"},
}
