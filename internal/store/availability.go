package store

import (
	"context"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/inventory"
)

// Availability loads the sellable stock as one entry per (product, size).
func (s *Store) Availability(ctx context.Context) (models.Snapshot, error) {
	table := s.tables.Availability
	rows, err := s.read(ctx, table)
	if err != nil || len(rows) == 0 {
		return models.Snapshot{}, err
	}

	h := parseHeader(rows[0])
	if err := h.require(table, ColID, ColCost, ColExpectedPrice, ColSizes); err != nil {
		return models.Snapshot{}, err
	}

	var order []string
	fieldsByID := make(map[string]productFields)
	ledgers := make(map[string]*inventory.SizeLedger)
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		fields, err := decodeProductFields(table, line, h, row)
		if err != nil {
			return models.Snapshot{}, err
		}
		ledger, err := s.decodeSizes(table, line, h, row)
		if err != nil {
			return models.Snapshot{}, err
		}

		acc, ok := ledgers[fields.ID]
		if !ok {
			acc = inventory.NewSizeLedger(nil)
			ledgers[fields.ID] = acc
			fieldsByID[fields.ID] = fields
			order = append(order, fields.ID)
		}
		for _, size := range ledger.Sizes() {
			acc.Increment(size, ledger.Count(size))
		}
	}

	snapshot := models.Snapshot{}
	for _, id := range order {
		p := fieldsByID[id].product()
		for _, size := range ledgers[id].Sizes() {
			snapshot.Entries = append(snapshot.Entries, models.EntryFromProduct(p, size, ledgers[id].Count(size)))
		}
	}
	return snapshot, nil
}

// SaveAvailability rewrites the availability table. Entries with no units are dropped.
func (s *Store) SaveAvailability(ctx context.Context, snapshot models.Snapshot) error {
	var order []string
	fieldsByID := make(map[string]productFields)
	ledgers := make(map[string]*inventory.SizeLedger)
	for _, e := range snapshot.Entries {
		if e.Count <= 0 {
			continue
		}
		ledger, ok := ledgers[e.ProductID]
		if !ok {
			ledger = inventory.NewSizeLedger(nil)
			ledgers[e.ProductID] = ledger
			fieldsByID[e.ProductID] = fieldsOfEntry(e)
			order = append(order, e.ProductID)
		}
		ledger.Increment(e.Size, e.Count)
	}

	var body [][]string
	for _, id := range order {
		body = append(body, s.productRows(fieldsByID[id], ledgers[id], false)...)
	}
	return s.write(ctx, s.tables.Availability, AvailabilityHeader, body)
}
