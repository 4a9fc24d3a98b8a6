package store

import (
	"context"

	"github.com/mamadbah2/importados/internal/domain/models"
)

// Sales loads the sales ledger in the order it was written.
func (s *Store) Sales(ctx context.Context) ([]models.SaleRecord, error) {
	table := s.tables.Sales
	rows, err := s.read(ctx, table)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	h := parseHeader(rows[0])
	// Size Sold is absent from ledgers written before sizes were tracked; such rows read with an empty size.
	if err := h.require(table, ColID, ColCost, ColSellingDate, ColFinalPrice); err != nil {
		return nil, err
	}

	records := make([]models.SaleRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		fields, err := decodeProductFields(table, line, h, row)
		if err != nil {
			return nil, err
		}

		raw := h.get(row, ColSellingDate)
		date, err := parseDate(raw)
		if err != nil {
			return nil, rowError(table, line, ColSellingDate, raw)
		}
		raw = h.get(row, ColFinalPrice)
		price, err := parseMoney(raw)
		if err != nil {
			return nil, rowError(table, line, ColFinalPrice, raw)
		}

		records = append(records, models.SaleRecord{
			ProductID:     fields.ID,
			Type:          fields.Type,
			Gender:        fields.Gender,
			Brand:         fields.Brand,
			Name:          fields.Name,
			Color:         fields.Color,
			Cost:          fields.Cost,
			ExpectedPrice: fields.ExpectedPrice,
			TripNumber:    fields.TripNumber,
			Sizes:         h.get(row, ColSizes),
			SellingDate:   date,
			FinalPrice:    price,
			Customer:      h.get(row, ColCustomer),
			Notes:         h.get(row, ColNotes),
			SizeSold:      h.get(row, ColSizeSold),
		})
	}
	return records, nil
}

// SaveSales rewrites the sales ledger.
func (s *Store) SaveSales(ctx context.Context, records []models.SaleRecord) error {
	body := make([][]string, 0, len(records))
	for _, r := range records {
		fields := productFields{
			ID: r.ProductID, Type: r.Type, Gender: r.Gender, Brand: r.Brand, Name: r.Name, Color: r.Color,
			Cost: r.Cost, ExpectedPrice: r.ExpectedPrice, TripNumber: r.TripNumber,
		}
		row := append(fields.cells(r.Sizes),
			r.SellingDate.Format(DateLayout),
			formatMoney(r.FinalPrice),
			r.Customer,
			r.Notes,
			r.SizeSold,
		)
		body = append(body, row)
	}
	return s.write(ctx, s.tables.Sales, SalesHeader, body)
}
