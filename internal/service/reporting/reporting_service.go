package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Source is the read-only table access the profit aggregator needs.
type Source interface {
	Catalog(ctx context.Context) ([]models.Product, error)
	Availability(ctx context.Context) (models.Snapshot, error)
	Sales(ctx context.Context) ([]models.SaleRecord, error)
}

// Service exposes profit analytics over the catalog and the sales ledger.
type Service struct {
	source  Source
	archive Archive
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. A nil archive disables archiving.
func NewService(source Source, archive Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if archive == nil {
		archive = NoopArchive{}
	}
	return &Service{source: source, archive: archive, logger: logger}
}

// ExpectedProfit groups the catalog by trip. Each product counts once per unit received.
func (s *Service) ExpectedProfit(ctx context.Context) ([]models.ExpectedProfitRow, error) {
	products, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	byTrip := make(map[string]*models.ExpectedProfitRow)
	for _, p := range products {
		units := p.Units()
		row, ok := byTrip[p.TripNumber]
		if !ok {
			row = &models.ExpectedProfitRow{TripNumber: p.TripNumber}
			byTrip[p.TripNumber] = row
		}
		n := decimal.NewFromInt(int64(units))
		row.GrossCost = row.GrossCost.Add(p.Cost.Mul(n))
		row.ExpectedSellingPrice = row.ExpectedSellingPrice.Add(p.ExpectedPrice.Mul(n))
		row.NumberOfProducts += units
	}

	rows := make([]models.ExpectedProfitRow, 0, len(byTrip))
	for _, row := range byTrip {
		row.ExpectedProfit = row.ExpectedSellingPrice.Sub(row.GrossCost)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TripNumber < rows[j].TripNumber })
	return rows, nil
}

// NetProfit sums the sales whose selling date falls within [start, end], both days included.
// An empty ledger or range yields a zero summary.
func (s *Service) NetProfit(ctx context.Context, start, end time.Time) (models.NetProfitSummary, error) {
	records, err := s.source.Sales(ctx)
	if err != nil {
		return models.NetProfitSummary{}, fmt.Errorf("load sales: %w", err)
	}

	from, to := dayOf(start), dayOf(end)
	summary := models.NetProfitSummary{Start: from, End: to}
	for _, r := range records {
		day := dayOf(r.SellingDate)
		if day.Before(from) || day.After(to) {
			continue
		}
		summary.Revenue = summary.Revenue.Add(r.FinalPrice)
		summary.Cost = summary.Cost.Add(r.Cost)
		summary.ProductsSold++
	}
	summary.NetProfit = summary.Revenue.Sub(summary.Cost)
	return summary, nil
}

// ParseRange reads a YYYY-MM-DD start and end.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	from, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// Snapshot collects the week-to-date result, the expected profit per trip and the stock level.
func (s *Service) Snapshot(ctx context.Context, now time.Time) (models.ProfitSnapshot, error) {
	week, err := s.NetProfit(ctx, mondayStart(now), now)
	if err != nil {
		return models.ProfitSnapshot{}, err
	}
	expected, err := s.ExpectedProfit(ctx)
	if err != nil {
		return models.ProfitSnapshot{}, err
	}
	available, err := s.source.Availability(ctx)
	if err != nil {
		return models.ProfitSnapshot{}, fmt.Errorf("load availability: %w", err)
	}
	return models.ProfitSnapshot{
		TakenAt:        now,
		Week:           week,
		Expected:       expected,
		UnitsAvailable: available.Units(),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// ArchiveSnapshot takes a snapshot and hands it to the archive.
func (s *Service) ArchiveSnapshot(ctx context.Context, now time.Time) (models.ProfitSnapshot, error) {
	snapshot, err := s.Snapshot(ctx, now)
	if err != nil {
		return models.ProfitSnapshot{}, err
	}
	if err := s.archive.SaveProfitSnapshot(ctx, snapshot); err != nil {
		return snapshot, fmt.Errorf("archive snapshot: %w", err)
	}
	s.logger.Info("profit snapshot archived",
		zap.Time("taken_at", snapshot.TakenAt),
		zap.Int("products_sold", snapshot.Week.ProductsSold))
	return snapshot, nil
}

// LastArchived returns the most recent archived snapshot, or nil if there is none.
func (s *Service) LastArchived(ctx context.Context) (*models.ProfitSnapshot, error) {
	snapshot, err := s.archive.LatestProfitSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load last snapshot: %w", err)
	}
	return snapshot, nil
}

// WeeklySummary renders the snapshot as a short plain-text message.
func (s *Service) WeeklySummary(ctx context.Context, now time.Time) (string, error) {
	snapshot, err := s.Snapshot(ctx, now)
	if err != nil {
		return "", err
	}
	return FormatSummary(snapshot), nil
}

// FormatSummary renders a snapshot for messaging.
func FormatSummary(snapshot models.ProfitSnapshot) string {
	var b strings.Builder
	week := snapshot.Week
	if week.ProductsSold == 0 {
		fmt.Fprintf(&b, "Sales (%s-%s): no sales recorded.\n", week.Start.Format(dateLayout), week.End.Format(dateLayout))
	} else {
		fmt.Fprintf(&b, "Sales (%s-%s): %d sold, revenue %s USD, net profit %s USD.\n",
			week.Start.Format(dateLayout), week.End.Format(dateLayout),
			week.ProductsSold, week.Revenue.StringFixed(2), week.NetProfit.StringFixed(2))
	}
	fmt.Fprintf(&b, "In stock: %d units.", snapshot.UnitsAvailable)
	for _, row := range snapshot.Expected {
		trip := row.TripNumber
		if trip == "" {
			trip = "(none)"
		}
		fmt.Fprintf(&b, "\nTrip %s: expected profit %s USD over %d units.", trip, row.ExpectedProfit.StringFixed(2), row.NumberOfProducts)
	}
	return b.String()
}

func mondayStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	return dayOf(now).AddDate(0, 0, -offset)
}

// dayOf drops the clock and zone, keeping the calendar date.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(value string) (time.Time, error) {
	str := strings.TrimSpace(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date: %w", models.ErrInvalidInput)
	}
	t, err := time.Parse(dateLayout, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", str, models.ErrInvalidInput)
	}
	return t, nil
}
