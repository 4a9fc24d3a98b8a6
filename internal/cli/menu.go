package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/inventory"
	"github.com/mamadbah2/importados/internal/service/reporting"
	"github.com/mamadbah2/importados/internal/service/stock"
)

const menuText = `
Menu:
1. Add Product
2. View Available Products
3. Process Sold Item
4. Calculate Expected Profit
5. Calculate Net Profit by Period
6. Create HTML Report of Available Items
7. Search Available Items
8. View Sales Records
9. Exit
`

// StockService is what the menu needs from the stock service.
type StockService interface {
	AddProduct(ctx context.Context, in models.NewProduct) (models.Product, error)
	SellItem(ctx context.Context, sale models.Sale) (models.SaleRecord, error)
	Available(ctx context.Context) (models.Snapshot, error)
	Search(ctx context.Context, term string) (models.Snapshot, error)
	SizesFor(ctx context.Context, productID string) ([]models.AvailabilityEntry, error)
	Sales(ctx context.Context) ([]models.SaleRecord, error)
}

// Reports is what the menu needs from the reporting service.
type Reports interface {
	ExpectedProfit(ctx context.Context) ([]models.ExpectedProfitRow, error)
	NetProfit(ctx context.Context, start, end time.Time) (models.NetProfitSummary, error)
}

// Pages writes the static HTML outputs.
type Pages interface {
	WriteGallery(snapshot models.Snapshot) (string, error)
	WriteSearchResults(term string, snapshot models.Snapshot) (string, error)
}

// Menu is the numbered operator menu. Every option reloads what it shows;
// nothing is carried between options.
type Menu struct {
	stock   StockService
	reports Reports
	pages   Pages
	in      *bufio.Scanner
	out     io.Writer
	logger  *zap.Logger
}

// New wires a menu reading answers from in and printing to out.
func New(stock StockService, reports Reports, pages Pages, in io.Reader, out io.Writer, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{
		stock:   stock,
		reports: reports,
		pages:   pages,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
}

var errInputClosed = errors.New("input closed")

// Run loops until the operator picks Exit or the input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprint(m.out, menuText)
		choice, err := m.ask("Choose an option: ")
		if err != nil {
			return m.finish(err)
		}

		var actionErr error
		switch choice {
		case "1":
			actionErr = m.addProduct(ctx)
		case "2":
			actionErr = m.viewAvailable(ctx)
		case "3":
			actionErr = m.processSale(ctx)
		case "4":
			actionErr = m.expectedProfit(ctx)
		case "5":
			actionErr = m.netProfit(ctx)
		case "6":
			actionErr = m.htmlReport(ctx)
		case "7":
			actionErr = m.search(ctx)
		case "8":
			actionErr = m.viewSales(ctx)
		case "9":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
			continue
		}

		if actionErr != nil {
			if errors.Is(actionErr, errInputClosed) || errors.Is(actionErr, context.Canceled) {
				return m.finish(actionErr)
			}
			m.report(choice, actionErr)
		}
	}
}

func (m *Menu) finish(err error) error {
	if errors.Is(err, errInputClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *Menu) report(choice string, err error) {
	if stock.IsUserError(err) {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	m.logger.Error("menu action failed", zap.String("option", choice), zap.Error(err))
	fmt.Fprintf(m.out, "Operation failed, nothing was saved: %v\n", err)
}

func (m *Menu) ask(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// askAll asks each prompt in turn, stopping at the first read error.
func (m *Menu) askAll(prompts ...string) ([]string, error) {
	answers := make([]string, 0, len(prompts))
	for _, p := range prompts {
		a, err := m.ask(p)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func (m *Menu) addProduct(ctx context.Context) error {
	fmt.Fprintln(m.out, "\nTypes: type (S = Sneakers, T = T-Shirts, H = Hoodies, J = Jacket, O = Other)")
	productType, err := m.ask("Enter product type: ")
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nGenders: (J = Jordans, W = Women, M = Men, K = Kids, NG = No Gender)")
	a, err := m.askAll(
		"Enter gender: ",
		"Enter brand: ",
		"Enter name: ",
		"Enter color: ",
		"Enter cost (USD): ",
		"Enter expected price (USD): ",
		"Enter trip number: ",
		"Enter available sizes (comma separated): ",
	)
	if err != nil {
		return err
	}

	product, err := m.stock.AddProduct(ctx, models.NewProduct{
		Type:          productType,
		Gender:        a[0],
		Brand:         a[1],
		Name:          a[2],
		Color:         a[3],
		Cost:          a[4],
		ExpectedPrice: a[5],
		TripNumber:    a[6],
		Sizes:         inventory.SplitSizeList(a[7]),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Product added with ID %s (%d units).\n", product.ID, product.Units())
	return nil
}

func (m *Menu) viewAvailable(ctx context.Context) error {
	snapshot, err := m.stock.Available(ctx)
	if err != nil {
		return err
	}
	return m.printSnapshot(snapshot)
}

func (m *Menu) processSale(ctx context.Context) error {
	productID, err := m.ask("Enter product ID sold: ")
	if err != nil {
		return err
	}
	entries, err := m.stock.SizesFor(ctx, productID)
	if errors.Is(err, models.ErrNotFound) {
		fmt.Fprintln(m.out, "Product ID not found.")
		return nil
	}
	if err != nil {
		return err
	}
	sizes := make([]string, 0, len(entries))
	for _, e := range entries {
		sizes = append(sizes, fmt.Sprintf("%s (%d)", e.Size, e.Count))
	}
	fmt.Fprintf(m.out, "Available sizes for %s: [%s]\n", productID, strings.Join(sizes, ", "))

	a, err := m.askAll(
		"Enter size sold: ",
		"Enter selling date (YYYY-MM-DD): ",
		"Enter final price (USD): ",
		"Enter customer name: ",
		"Enter notes: ",
	)
	if err != nil {
		return err
	}

	record, err := m.stock.SellItem(ctx, models.Sale{
		ProductID:   productID,
		Size:        a[0],
		SellingDate: a[1],
		FinalPrice:  a[2],
		Customer:    a[3],
		Notes:       a[4],
	})
	if errors.Is(err, models.ErrSizeUnavailable) {
		fmt.Fprintln(m.out, "Item not available in the specified size.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Sold item processed: %s size %s for $%s USD.\n", record.ProductID, record.SizeSold, record.FinalPrice.StringFixed(2))
	return nil
}

func (m *Menu) expectedProfit(ctx context.Context) error {
	rows, err := m.reports.ExpectedProfit(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(m.out, "No products in the catalog.")
		return nil
	}
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Trip #\tGross Cost\tExpected Selling Price\tNumber of Products\tExpected Profit")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.TripNumber, r.GrossCost.StringFixed(2),
			r.ExpectedSellingPrice.StringFixed(2), r.NumberOfProducts, r.ExpectedProfit.StringFixed(2))
	}
	return tw.Flush()
}

func (m *Menu) netProfit(ctx context.Context) error {
	a, err := m.askAll("Enter start date (YYYY-MM-DD): ", "Enter end date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	start, end, err := reporting.ParseRange(a[0], a[1])
	if err != nil {
		return err
	}
	summary, err := m.reports.NetProfit(ctx, start, end)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Net Profit from %s to %s: $%s (products sold: %d)\n",
		a[0], a[1], summary.NetProfit.StringFixed(2), summary.ProductsSold)
	return nil
}

func (m *Menu) htmlReport(ctx context.Context) error {
	snapshot, err := m.stock.Available(ctx)
	if err != nil {
		return err
	}
	path, err := m.pages.WriteGallery(snapshot)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "HTML report created: %s\n", path)
	return nil
}

func (m *Menu) search(ctx context.Context) error {
	term, err := m.ask("Enter search term (leave blank for all items): ")
	if err != nil {
		return err
	}
	snapshot, err := m.stock.Search(ctx, term)
	if err != nil {
		return err
	}
	if err := m.printSnapshot(snapshot); err != nil {
		return err
	}
	path, err := m.pages.WriteSearchResults(term, snapshot)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Search results HTML file created: %s\n", path)
	return nil
}

func (m *Menu) viewSales(ctx context.Context) error {
	records, err := m.stock.Sales(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(m.out, "No sales recorded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tSize Sold\tSelling Date\tCost (USD)\tFinal Price (USD)\tCustomer\tNotes")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ProductID, r.Name, r.SizeSold,
			r.SellingDate.Format("2006-01-02"), r.Cost.StringFixed(2), r.FinalPrice.StringFixed(2), r.Customer, r.Notes)
	}
	return tw.Flush()
}

func (m *Menu) printSnapshot(snapshot models.Snapshot) error {
	if len(snapshot.Entries) == 0 {
		_, err := fmt.Fprintln(m.out, "No products available.")
		return err
	}
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tType\tGender\tBrand\tName\tColor\tCost (USD)\tExpected Price (USD)\tTrip #\tSize\tCount")
	for _, e := range snapshot.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n", e.ProductID, e.Type, e.Gender, e.Brand, e.Name,
			e.Color, e.Cost.StringFixed(2), e.ExpectedPrice.StringFixed(2), e.TripNumber, e.Size, e.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(m.out, "%d units in stock.\n", snapshot.Units())
	return err
}
