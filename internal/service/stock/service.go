package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/inventory"
)

const dateLayout = "2006-01-02"

// Repository is the table access the stock service needs; *store.Store satisfies it.
type Repository interface {
	Catalog(ctx context.Context) ([]models.Product, error)
	SaveCatalog(ctx context.Context, products []models.Product) error
	Availability(ctx context.Context) (models.Snapshot, error)
	SaveAvailability(ctx context.Context, snapshot models.Snapshot) error
	Sales(ctx context.Context) ([]models.SaleRecord, error)
	SaveSales(ctx context.Context, records []models.SaleRecord) error
}

// Service keeps the catalog, availability and sales tables consistent.
// Each operation loads the tables it needs, then rewrites them; a failed
// second write restores the first table.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService wires a stock service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// AddProduct assigns an ID, appends the product to the catalog and opens its stock.
func (s *Service) AddProduct(ctx context.Context, in models.NewProduct) (models.Product, error) {
	productType := models.ParseProductType(in.Type)
	gender := models.ParseGender(in.Gender)

	cost, err := parseAmount("cost", in.Cost)
	if err != nil {
		return models.Product{}, err
	}
	expected, err := parseAmount("expected price", in.ExpectedPrice)
	if err != nil {
		return models.Product{}, err
	}

	ledger := inventory.NewSizeLedger(in.Sizes)
	if ledger.Len() == 0 {
		return models.Product{}, fmt.Errorf("at least one size is required: %w", models.ErrInvalidInput)
	}

	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("load catalog: %w", err)
	}
	available, err := s.repo.Availability(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("load availability: %w", err)
	}

	ids := make([]string, 0, len(catalog))
	for _, p := range catalog {
		ids = append(ids, p.ID)
	}
	id, err := inventory.NextID(ids, productType, gender)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		ID:            id,
		Type:          productType,
		Gender:        gender,
		Brand:         strings.TrimSpace(in.Brand),
		Name:          strings.TrimSpace(in.Name),
		Color:         strings.TrimSpace(in.Color),
		Cost:          cost,
		ExpectedPrice: expected,
		TripNumber:    strings.TrimSpace(in.TripNumber),
		Sizes:         ledger.Counts(),
		SizeOrder:     ledger.Sizes(),
	}

	nextAvailable := models.Snapshot{Entries: append([]models.AvailabilityEntry(nil), available.Entries...)}
	for _, size := range ledger.Sizes() {
		nextAvailable.Entries = append(nextAvailable.Entries, models.EntryFromProduct(product, size, ledger.Count(size)))
	}

	nextCatalog := append(append([]models.Product(nil), catalog...), product)
	if err := s.repo.SaveCatalog(ctx, nextCatalog); err != nil {
		return models.Product{}, fmt.Errorf("save catalog: %w", err)
	}
	if err := s.repo.SaveAvailability(ctx, nextAvailable); err != nil {
		s.restoreCatalog(ctx, catalog)
		return models.Product{}, fmt.Errorf("save availability: %w", err)
	}

	s.logger.Info("product added",
		zap.String("product_id", product.ID),
		zap.Int("units", ledger.Total()),
		zap.Strings("sizes", ledger.Sizes()))
	return product, nil
}

// Restock adds units to an existing product. The catalog's size counts grow with
// the availability so that received = available + sold keeps holding.
func (s *Service) Restock(ctx context.Context, productID string, sizes []string) (models.Product, error) {
	productID = strings.TrimSpace(productID)
	incoming := inventory.NewSizeLedger(sizes)
	if incoming.Len() == 0 {
		return models.Product{}, fmt.Errorf("at least one size is required: %w", models.ErrInvalidInput)
	}

	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("load catalog: %w", err)
	}
	available, err := s.repo.Availability(ctx)
	if err != nil {
		return models.Product{}, fmt.Errorf("load availability: %w", err)
	}

	pos := indexOf(catalog, productID)
	if pos < 0 {
		return models.Product{}, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}

	nextCatalog := append([]models.Product(nil), catalog...)
	received := inventory.FromCounts(catalog[pos].Sizes, catalog[pos].SizeOrder)
	for _, size := range incoming.Sizes() {
		received.Increment(size, incoming.Count(size))
	}
	product := catalog[pos]
	product.Sizes = received.Counts()
	product.SizeOrder = received.Sizes()
	nextCatalog[pos] = product

	nextAvailable := models.Snapshot{}
	added := make(map[string]bool)
	for _, e := range available.Entries {
		if e.ProductID == productID && incoming.Count(e.Size) > 0 {
			e.Count += incoming.Count(e.Size)
			added[e.Size] = true
		}
		nextAvailable.Entries = append(nextAvailable.Entries, e)
	}
	for _, size := range incoming.Sizes() {
		if !added[size] {
			nextAvailable.Entries = append(nextAvailable.Entries, models.EntryFromProduct(product, size, incoming.Count(size)))
		}
	}

	if err := s.repo.SaveCatalog(ctx, nextCatalog); err != nil {
		return models.Product{}, fmt.Errorf("save catalog: %w", err)
	}
	if err := s.repo.SaveAvailability(ctx, nextAvailable); err != nil {
		s.restoreCatalog(ctx, catalog)
		return models.Product{}, fmt.Errorf("save availability: %w", err)
	}

	s.logger.Info("product restocked", zap.String("product_id", productID), zap.Int("units", incoming.Total()))
	return product, nil
}

// SellItem records the sale of one unit of size. Nothing is written unless the
// product and size are in stock and the sale fields parse.
func (s *Service) SellItem(ctx context.Context, sale models.Sale) (models.SaleRecord, error) {
	productID := strings.TrimSpace(sale.ProductID)
	size := strings.TrimSpace(sale.Size)

	sellingDate, err := ParseDate(sale.SellingDate)
	if err != nil {
		return models.SaleRecord{}, err
	}
	finalPrice, err := parseAmount("final price", sale.FinalPrice)
	if err != nil {
		return models.SaleRecord{}, err
	}

	available, err := s.repo.Availability(ctx)
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("load availability: %w", err)
	}
	entries := available.ForProduct(productID)
	if len(entries) == 0 {
		return models.SaleRecord{}, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}

	ledger := ledgerOf(entries)
	offered := ledger.Joined()
	if err := ledger.Decrement(size); err != nil {
		return models.SaleRecord{}, fmt.Errorf("product %s: %w", productID, err)
	}

	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("load catalog: %w", err)
	}
	sales, err := s.repo.Sales(ctx)
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("load sales: %w", err)
	}

	source := models.Product{
		ID: productID, Type: entries[0].Type, Gender: entries[0].Gender, Brand: entries[0].Brand,
		Name: entries[0].Name, Color: entries[0].Color, Cost: entries[0].Cost,
		ExpectedPrice: entries[0].ExpectedPrice, TripNumber: entries[0].TripNumber,
	}
	if pos := indexOf(catalog, productID); pos >= 0 {
		source = catalog[pos]
	} else {
		s.logger.Warn("sold product missing from catalog, using availability fields", zap.String("product_id", productID))
	}

	record := models.SaleRecord{
		ProductID:     source.ID,
		Type:          source.Type,
		Gender:        source.Gender,
		Brand:         source.Brand,
		Name:          source.Name,
		Color:         source.Color,
		Cost:          source.Cost,
		ExpectedPrice: source.ExpectedPrice,
		TripNumber:    source.TripNumber,
		// Sizes on offer when the sale was made, not the sizes ever received.
		Sizes:         offered,
		SellingDate:   sellingDate,
		FinalPrice:    finalPrice,
		Customer:      strings.TrimSpace(sale.Customer),
		Notes:         strings.TrimSpace(sale.Notes),
		SizeSold:      size,
	}

	nextAvailable := models.Snapshot{}
	for _, e := range available.Entries {
		if e.ProductID == productID && e.Size == size {
			e.Count = ledger.Count(size)
			if e.Count == 0 {
				continue
			}
		}
		nextAvailable.Entries = append(nextAvailable.Entries, e)
	}

	nextSales := append(append([]models.SaleRecord(nil), sales...), record)
	if err := s.repo.SaveSales(ctx, nextSales); err != nil {
		return models.SaleRecord{}, fmt.Errorf("save sales: %w", err)
	}
	if err := s.repo.SaveAvailability(ctx, nextAvailable); err != nil {
		if rerr := s.repo.SaveSales(ctx, sales); rerr != nil {
			s.logger.Error("failed to restore sales ledger", zap.Error(rerr))
		}
		return models.SaleRecord{}, fmt.Errorf("save availability: %w", err)
	}

	s.logger.Info("item sold",
		zap.String("product_id", productID),
		zap.String("size", size),
		zap.String("final_price", finalPrice.StringFixed(2)),
		zap.Int("units_left", ledger.Total()))
	return record, nil
}

// Available returns the current availability snapshot.
func (s *Service) Available(ctx context.Context) (models.Snapshot, error) {
	snapshot, err := s.repo.Availability(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load availability: %w", err)
	}
	return snapshot, nil
}

// Search filters availability by a case-insensitive substring of the product name.
func (s *Service) Search(ctx context.Context, term string) (models.Snapshot, error) {
	snapshot, err := s.Available(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	return snapshot.FilterByName(term), nil
}

// SizesFor lists the sizes still in stock for productID.
func (s *Service) SizesFor(ctx context.Context, productID string) ([]models.AvailabilityEntry, error) {
	snapshot, err := s.Available(ctx)
	if err != nil {
		return nil, err
	}
	entries := snapshot.ForProduct(strings.TrimSpace(productID))
	if len(entries) == 0 {
		return nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	return entries, nil
}

// Sales returns the sales ledger.
func (s *Service) Sales(ctx context.Context) ([]models.SaleRecord, error) {
	records, err := s.repo.Sales(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return records, nil
}

// Catalog returns every product ever added.
func (s *Service) Catalog(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return products, nil
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", raw, models.ErrInvalidInput)
	}
	return t, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a number: %w", field, raw, models.ErrInvalidInput)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s %q must not be negative: %w", field, raw, models.ErrInvalidInput)
	}
	return d, nil
}

func (s *Service) restoreCatalog(ctx context.Context, catalog []models.Product) {
	if err := s.repo.SaveCatalog(ctx, catalog); err != nil {
		s.logger.Error("failed to restore catalog", zap.Error(err))
	}
}

func indexOf(products []models.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func ledgerOf(entries []models.AvailabilityEntry) *inventory.SizeLedger {
	ledger := inventory.NewSizeLedger(nil)
	for _, e := range entries {
		ledger.Increment(e.Size, e.Count)
	}
	return ledger
}

// IsUserError reports whether err comes from operator input or stock state rather than storage.
func IsUserError(err error) bool {
	return errors.Is(err, models.ErrInvalidInput) ||
		errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrSizeUnavailable)
}
