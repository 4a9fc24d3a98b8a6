package store

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/inventory"
)

// Catalog loads every product ever added. Rows sharing an ID (per-size layout) are merged.
func (s *Store) Catalog(ctx context.Context) ([]models.Product, error) {
	table := s.tables.Catalog
	rows, err := s.read(ctx, table)
	if err != nil || len(rows) == 0 {
		return nil, err
	}

	h := parseHeader(rows[0])
	if err := h.require(table, ColID, ColCost, ColExpectedPrice, ColSizes); err != nil {
		return nil, err
	}

	var products []models.Product
	index := make(map[string]int)
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		fields, err := decodeProductFields(table, line, h, row)
		if err != nil {
			return nil, err
		}
		ledger, err := s.decodeSizes(table, line, h, row)
		if err != nil {
			return nil, err
		}

		pos, ok := index[fields.ID]
		if !ok {
			products = append(products, fields.product())
			pos = len(products) - 1
			index[fields.ID] = pos
		}
		addSizes(&products[pos], ledger)
	}
	return products, nil
}

// SaveCatalog rewrites the catalog table.
func (s *Store) SaveCatalog(ctx context.Context, products []models.Product) error {
	var body [][]string
	for _, p := range products {
		ledger := inventory.FromCounts(p.Sizes, p.SizeOrder)
		body = append(body, s.productRows(fieldsOfProduct(p), ledger, true)...)
	}
	return s.write(ctx, s.tables.Catalog, CatalogHeader, body)
}

// productRows lays out a product's sizes according to the store layout. keepEmpty
// writes a placeholder row for a product without sizes so it is not lost.
func (s *Store) productRows(fields productFields, ledger *inventory.SizeLedger, keepEmpty bool) [][]string {
	if ledger.Len() == 0 {
		if !keepEmpty {
			return nil
		}
		return [][]string{append(fields.cells(""), "0")}
	}

	if s.layout == LayoutJoined {
		return [][]string{append(fields.cells(ledger.Joined()), strconv.Itoa(ledger.Total()))}
	}

	rows := make([][]string, 0, ledger.Len())
	for _, size := range ledger.Sizes() {
		rows = append(rows, append(fields.cells(size), strconv.Itoa(ledger.Count(size))))
	}
	return rows
}

// decodeSizes reads the Sizes/Count pair of one row in either layout. A row naming
// a single size takes its units from Count. A list carries its own counts, but the
// original tool wrote unique labels with the total in Count ("9, 10" / 3): Count
// is the authority for the total, and units the labels cannot account for are put
// on the first listed size with a warning. A Count below the listed units cannot
// be placed and makes the row unreadable.
func (s *Store) decodeSizes(table string, line int, h header, row []string) (*inventory.SizeLedger, error) {
	raw := h.get(row, ColSizes)
	ledger, err := inventory.ParseJoined(raw)
	if err != nil {
		return nil, rowError(table, line, ColSizes, raw)
	}

	countRaw := h.get(row, ColCount)
	n, present, err := parseCount(countRaw)
	if err != nil {
		return nil, rowError(table, line, ColCount, countRaw)
	}
	if !present || ledger.Len() == 0 {
		return ledger, nil
	}
	if ledger.Len() == 1 {
		size := ledger.Sizes()[0]
		return inventory.FromCounts(map[string]int{size: n}, []string{size}), nil
	}

	switch total := ledger.Total(); {
	case n < total:
		return nil, rowError(table, line, ColCount, countRaw)
	case n > total:
		first := ledger.Sizes()[0]
		ledger.Increment(first, n-total)
		s.logger.Warn("size counts missing, surplus units put on first size",
			zap.String("table", table),
			zap.Int("line", line),
			zap.String("product_id", h.get(row, ColID)),
			zap.String("sizes", raw),
			zap.Int("count", n),
			zap.Int("listed", total),
			zap.String("size", first))
	}
	return ledger, nil
}

func addSizes(p *models.Product, ledger *inventory.SizeLedger) {
	if p.Sizes == nil {
		p.Sizes = make(map[string]int)
	}
	for _, size := range ledger.Sizes() {
		if _, ok := p.Sizes[size]; !ok {
			p.SizeOrder = append(p.SizeOrder, size)
		}
		p.Sizes[size] += ledger.Count(size)
	}
}
