package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductType enumerates the catalog categories. Unknown operator input is kept verbatim.
type ProductType string

const (
	TypeSneakers ProductType = "Sneakers"
	TypeTShirts  ProductType = "T-Shirts"
	TypeHoodies  ProductType = "Hoodies"
	TypeJacket   ProductType = "Jacket"
	TypeOther    ProductType = "Other"
)

// Gender enumerates the catalog gender lines.
type Gender string

const (
	GenderJordans  Gender = "Jordans"
	GenderWomen    Gender = "Women"
	GenderMen      Gender = "Men"
	GenderKids     Gender = "Kids"
	GenderNoGender Gender = "No Gender"
)

var productTypes = []ProductType{TypeSneakers, TypeTShirts, TypeHoodies, TypeJacket, TypeOther}

var genders = []Gender{GenderJordans, GenderWomen, GenderMen, GenderKids, GenderNoGender}

// ParseProductType resolves a menu answer ("h", "Hoodies", "hoodie") to a ProductType.
func ParseProductType(value string) ProductType {
	trimmed := strings.TrimSpace(value)
	for _, t := range productTypes {
		if strings.EqualFold(trimmed, string(t)) {
			return t
		}
	}
	if len(trimmed) == 1 {
		for _, t := range productTypes {
			if strings.EqualFold(trimmed, string(t)[:1]) {
				return t
			}
		}
	}
	return ProductType(trimmed)
}

// ParseGender resolves a menu answer ("w", "NG", "Women") to a Gender.
func ParseGender(value string) Gender {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "ng") || strings.EqualFold(trimmed, "nogender") {
		return GenderNoGender
	}
	for _, g := range genders {
		if strings.EqualFold(trimmed, string(g)) {
			return g
		}
	}
	if len(trimmed) == 1 {
		for _, g := range genders {
			if strings.EqualFold(trimmed, string(g)[:1]) {
				return g
			}
		}
	}
	return Gender(trimmed)
}

// Product is a catalog entry. ID is assigned once and never changes.
type Product struct {
	ID            string
	Type          ProductType
	Gender        Gender
	Brand         string
	Name          string
	Color         string
	Cost          decimal.Decimal
	ExpectedPrice decimal.Decimal
	TripNumber    string
	// Sizes maps a size label to the number of units received.
	Sizes map[string]int
	// SizeOrder keeps the order sizes were first entered.
	SizeOrder []string
}

// Units returns the total number of units received for the product.
func (p Product) Units() int {
	total := 0
	for _, n := range p.Sizes {
		total += n
	}
	return total
}

// NewProduct captures the operator input for Add Product.
type NewProduct struct {
	Type          string
	Gender        string
	Brand         string
	Name          string
	Color         string
	Cost          string
	ExpectedPrice string
	TripNumber    string
	// Sizes is the raw list, repeats meaning several units of the same size.
	Sizes []string
}
