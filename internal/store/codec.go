package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/importados/internal/domain/models"
)

// header maps column names to their position in a row.
type header map[string]int

func parseHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

func (h header) index(col string) (int, bool) {
	if i, ok := h[col]; ok {
		return i, true
	}
	for _, alias := range columnAliases[col] {
		if i, ok := h[alias]; ok {
			return i, true
		}
	}
	return 0, false
}

func (h header) has(col string) bool {
	_, ok := h.index(col)
	return ok
}

func (h header) require(table string, cols ...string) error {
	var missing []string
	for _, col := range cols {
		if !h.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s missing columns %s: %w", table, strings.Join(missing, ", "), models.ErrStorageUnreadable)
	}
	return nil
}

func (h header) get(row []string, col string) string {
	i, ok := h.index(col)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// rowError points at the 1-based line of the table, header included.
func rowError(table string, line int, col string, value string) error {
	return fmt.Errorf("table %s line %d: bad %s %q: %w", table, line, col, value, models.ErrStorageUnreadable)
}

func parseMoney(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// parseCount accepts "3" as well as spreadsheet floats such as "3.0".
func parseCount(value string) (int, bool, error) {
	if value == "" {
		return 0, false, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, false, err
	}
	if !d.Equal(d.Truncate(0)) || d.IsNegative() {
		return 0, false, fmt.Errorf("count %s is not a whole non-negative number", value)
	}
	return int(d.IntPart()), true, nil
}

// parseDate reads YYYY-MM-DD. A trailing time of day, as spreadsheet exports
// write it ("2024-05-10 00:00:00", "2024-05-10T00:00:00"), is dropped; any
// other trailing text is an error.
func parseDate(value string) (time.Time, error) {
	if len(value) > len(DateLayout) {
		switch value[len(DateLayout)] {
		case ' ', 'T':
			value = value[:len(DateLayout)]
		default:
			return time.Time{}, fmt.Errorf("date %q has trailing characters", value)
		}
	}
	return time.Parse(DateLayout, value)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// productFields is the common prefix of every table row.
type productFields struct {
	ID            string
	Type          models.ProductType
	Gender        models.Gender
	Brand         string
	Name          string
	Color         string
	Cost          decimal.Decimal
	ExpectedPrice decimal.Decimal
	TripNumber    string
}

func decodeProductFields(table string, line int, h header, row []string) (productFields, error) {
	f := productFields{
		ID:         h.get(row, ColID),
		Type:       models.ProductType(h.get(row, ColType)),
		Gender:     models.Gender(h.get(row, ColGender)),
		Brand:      h.get(row, ColBrand),
		Name:       h.get(row, ColName),
		Color:      h.get(row, ColColor),
		TripNumber: h.get(row, ColTrip),
	}
	if f.ID == "" {
		return f, rowError(table, line, ColID, "")
	}

	var err error
	raw := h.get(row, ColCost)
	if f.Cost, err = parseMoney(raw); err != nil {
		return f, rowError(table, line, ColCost, raw)
	}
	raw = h.get(row, ColExpectedPrice)
	if f.ExpectedPrice, err = parseMoney(raw); err != nil {
		return f, rowError(table, line, ColExpectedPrice, raw)
	}
	return f, nil
}

func (f productFields) cells(sizes string) []string {
	return []string{
		f.ID, string(f.Type), string(f.Gender), f.Brand, f.Name, f.Color,
		formatMoney(f.Cost), formatMoney(f.ExpectedPrice), f.TripNumber, sizes,
	}
}

func fieldsOfProduct(p models.Product) productFields {
	return productFields{
		ID: p.ID, Type: p.Type, Gender: p.Gender, Brand: p.Brand, Name: p.Name, Color: p.Color,
		Cost: p.Cost, ExpectedPrice: p.ExpectedPrice, TripNumber: p.TripNumber,
	}
}

func fieldsOfEntry(e models.AvailabilityEntry) productFields {
	return productFields{
		ID: e.ProductID, Type: e.Type, Gender: e.Gender, Brand: e.Brand, Name: e.Name, Color: e.Color,
		Cost: e.Cost, ExpectedPrice: e.ExpectedPrice, TripNumber: e.TripNumber,
	}
}

func (f productFields) product() models.Product {
	return models.Product{
		ID: f.ID, Type: f.Type, Gender: f.Gender, Brand: f.Brand, Name: f.Name, Color: f.Color,
		Cost: f.Cost, ExpectedPrice: f.ExpectedPrice, TripNumber: f.TripNumber,
		Sizes: make(map[string]int),
	}
}
