package stock

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/inventory"
)

// Discrepancy is a (product, size) pair whose stored availability differs from
// what the catalog and sales ledger imply.
type Discrepancy struct {
	ProductID string
	Size      string
	Stored    int
	Expected  int
}

// Expected derives availability from scratch: units received minus units sold.
// Sales of sizes the catalog never listed, and old sales without a size, are
// ignored and logged.
func (s *Service) Expected(ctx context.Context) (models.Snapshot, error) {
	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load catalog: %w", err)
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load sales: %w", err)
	}

	ledgers := make(map[string]*inventory.SizeLedger, len(catalog))
	for _, p := range catalog {
		ledgers[p.ID] = inventory.FromCounts(p.Sizes, p.SizeOrder)
	}
	for _, sale := range sales {
		ledger, ok := ledgers[sale.ProductID]
		if !ok {
			s.logger.Warn("sale references unknown product", zap.String("product_id", sale.ProductID))
			continue
		}
		if sale.SizeSold == "" {
			s.logger.Warn("sale has no size sold, not subtracted", zap.String("product_id", sale.ProductID))
			continue
		}
		if err := ledger.Decrement(sale.SizeSold); err != nil {
			s.logger.Warn("sale exceeds received units",
				zap.String("product_id", sale.ProductID),
				zap.String("size", sale.SizeSold))
		}
	}

	snapshot := models.Snapshot{}
	for _, p := range catalog {
		ledger := ledgers[p.ID]
		for _, size := range ledger.Sizes() {
			snapshot.Entries = append(snapshot.Entries, models.EntryFromProduct(p, size, ledger.Count(size)))
		}
	}
	return snapshot, nil
}

// RebuildAvailability overwrites the availability table with Expected.
func (s *Service) RebuildAvailability(ctx context.Context) (models.Snapshot, error) {
	snapshot, err := s.Expected(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := s.repo.SaveAvailability(ctx, snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("save availability: %w", err)
	}
	s.logger.Info("availability rebuilt", zap.Int("entries", len(snapshot.Entries)), zap.Int("units", snapshot.Units()))
	return snapshot, nil
}

// Audit compares stored availability against Expected without writing anything.
func (s *Service) Audit(ctx context.Context) ([]Discrepancy, error) {
	expected, err := s.Expected(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.Available(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ id, size string }
	counts := make(map[key][2]int)
	for _, e := range stored.Entries {
		c := counts[key{e.ProductID, e.Size}]
		c[0] += e.Count
		counts[key{e.ProductID, e.Size}] = c
	}
	for _, e := range expected.Entries {
		c := counts[key{e.ProductID, e.Size}]
		c[1] += e.Count
		counts[key{e.ProductID, e.Size}] = c
	}

	var out []Discrepancy
	for k, c := range counts {
		if c[0] != c[1] {
			out = append(out, Discrepancy{ProductID: k.id, Size: k.size, Stored: c[0], Expected: c[1]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Size < out[j].Size
	})
	return out, nil
}
