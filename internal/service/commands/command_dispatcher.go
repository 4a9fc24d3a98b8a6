package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const dateFormat = "2006-01-02"

// maxListed caps the lines of a stock reply so it stays one readable message.
const maxListed = 30

// HelpText lists the queries the dispatcher answers.
const HelpText = "Stock queries:\n" +
	"/stock - units in stock per product\n" +
	"/sizes <ID> - sizes left for a product\n" +
	"/search <name> - products whose name contains the text\n" +
	"/profit - expected profit per trip\n" +
	"/net <YYYY-MM-DD> <YYYY-MM-DD> - realised profit for a period\n" +
	"/summary - week to date summary"

// StockReader is the read side of the stock service.
type StockReader interface {
	Available(ctx context.Context) (models.Snapshot, error)
	Search(ctx context.Context, term string) (models.Snapshot, error)
	SizesFor(ctx context.Context, productID string) ([]models.AvailabilityEntry, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	ExpectedProfit(ctx context.Context) ([]models.ExpectedProfitRow, error)
	NetProfit(ctx context.Context, start, end time.Time) (models.NetProfitSummary, error)
	WeeklySummary(ctx context.Context, now time.Time) (string, error)
}

// Dispatcher answers parsed commands. It never writes to the inventory.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	stock     StockReader
	reporting ReportingAdapter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(stock StockReader, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stock:     stock,
		reporting: reporting,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the query and formats the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStock:
		snapshot, err := s.stock.Available(ctx)
		if err != nil {
			return "", err
		}
		return formatStock("In stock", snapshot), nil
	case models.CommandSearch:
		term := strings.Join(cmd.Args, " ")
		snapshot, err := s.stock.Search(ctx, term)
		if err != nil {
			return "", err
		}
		return formatStock(fmt.Sprintf("Matches for %q", term), snapshot), nil
	case models.CommandSizes:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		entries, err := s.stock.SizesFor(ctx, cmd.Args[0])
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Sprintf("%s is not in stock.", cmd.Args[0]), nil
		}
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, fmt.Sprintf("%s (%d)", e.Size, e.Count))
		}
		return fmt.Sprintf("%s %s: %s", entries[0].ProductID, entries[0].Name, strings.Join(parts, ", ")), nil
	case models.CommandProfit:
		rows, err := s.reporting.ExpectedProfit(ctx)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "Expected profit: catalog is empty.", nil
		}
		lines := []string{"Expected profit by trip:"}
		for _, row := range rows {
			lines = append(lines, fmt.Sprintf("%s: cost %s, expected %s, profit %s USD (%d units)",
				tripLabel(row.TripNumber), row.GrossCost.StringFixed(2), row.ExpectedSellingPrice.StringFixed(2),
				row.ExpectedProfit.StringFixed(2), row.NumberOfProducts))
		}
		return strings.Join(lines, "\n"), nil
	case models.CommandNet:
		if len(cmd.Args) != 2 {
			return "", ErrInvalidArguments
		}
		start, end, err := reporting.ParseRange(cmd.Args[0], cmd.Args[1])
		if err != nil {
			return "", ErrInvalidArguments
		}
		summary, err := s.reporting.NetProfit(ctx, start, end)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Net profit (%s-%s): %s USD from %d sales (revenue %s, cost %s).",
			start.Format(dateFormat), end.Format(dateFormat), summary.NetProfit.StringFixed(2),
			summary.ProductsSold, summary.Revenue.StringFixed(2), summary.Cost.StringFixed(2)), nil
	case models.CommandSummary:
		return s.reporting.WeeklySummary(ctx, s.now())
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func formatStock(title string, snapshot models.Snapshot) string {
	if len(snapshot.Entries) == 0 {
		return title + ": nothing."
	}

	type line struct {
		name  string
		units int
		sizes []string
	}
	var order []string
	lines := make(map[string]*line)
	for _, e := range snapshot.Entries {
		l, ok := lines[e.ProductID]
		if !ok {
			l = &line{name: e.Name}
			lines[e.ProductID] = l
			order = append(order, e.ProductID)
		}
		l.units += e.Count
		l.sizes = append(l.sizes, e.Size)
	}

	out := []string{fmt.Sprintf("%s: %d units.", title, snapshot.Units())}
	for i, id := range order {
		if i == maxListed {
			out = append(out, fmt.Sprintf("... and %d more products", len(order)-maxListed))
			break
		}
		l := lines[id]
		out = append(out, fmt.Sprintf("%s %s: %d (%s)", id, l.name, l.units, strings.Join(l.sizes, ", ")))
	}
	return strings.Join(out, "\n")
}

func tripLabel(trip string) string {
	if trip == "" {
		return "(no trip)"
	}
	return trip
}
