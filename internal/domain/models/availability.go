package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AvailabilityEntry is one sellable (product, size) pair with its remaining units.
type AvailabilityEntry struct {
	ProductID     string
	Type          ProductType
	Gender        Gender
	Brand         string
	Name          string
	Color         string
	Cost          decimal.Decimal
	ExpectedPrice decimal.Decimal
	TripNumber    string
	Size          string
	Count         int
}

// Snapshot is a point-in-time view of sellable stock, ordered by product then size.
type Snapshot struct {
	Entries []AvailabilityEntry
}

// Units sums the remaining units across the snapshot.
func (s Snapshot) Units() int {
	total := 0
	for _, e := range s.Entries {
		total += e.Count
	}
	return total
}

// ForProduct returns the entries belonging to productID.
func (s Snapshot) ForProduct(productID string) []AvailabilityEntry {
	var out []AvailabilityEntry
	for _, e := range s.Entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

// FilterByName keeps entries whose name contains term, ignoring case. An empty term keeps all.
func (s Snapshot) FilterByName(term string) Snapshot {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return Snapshot{Entries: append([]AvailabilityEntry(nil), s.Entries...)}
	}
	out := Snapshot{}
	for _, e := range s.Entries {
		if strings.Contains(strings.ToLower(e.Name), term) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// EntryFromProduct copies the catalog fields of p into an availability entry for size.
func EntryFromProduct(p Product, size string, count int) AvailabilityEntry {
	return AvailabilityEntry{
		ProductID:     p.ID,
		Type:          p.Type,
		Gender:        p.Gender,
		Brand:         p.Brand,
		Name:          p.Name,
		Color:         p.Color,
		Cost:          p.Cost,
		ExpectedPrice: p.ExpectedPrice,
		TripNumber:    p.TripNumber,
		Size:          size,
		Count:         count,
	}
}
