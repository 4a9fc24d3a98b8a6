package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/render"
	"github.com/mamadbah2/importados/internal/repository/csvfile"
	"github.com/mamadbah2/importados/internal/service/reporting"
	"github.com/mamadbah2/importados/internal/service/stock"
	"github.com/mamadbah2/importados/internal/store"
)

type session struct {
	dir   string
	store *store.Store
}

func newSession(t *testing.T) *session {
	t.Helper()
	dir := t.TempDir()
	st := store.New(csvfile.NewRepository(dir, nil), store.LayoutPerSize, nil)
	require.NoError(t, st.Bootstrap(context.Background()))
	return &session{dir: dir, store: st}
}

func (s *session) run(t *testing.T, lines ...string) string {
	t.Helper()
	renderer, err := render.NewRenderer(config.ReportConfig{
		Title:            "fily",
		OutputPath:       filepath.Join(s.dir, "index.html"),
		SearchOutputPath: filepath.Join(s.dir, "search_results.html"),
	}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	menu := New(stock.NewService(s.store, nil), reporting.NewService(s.store, nil, nil), renderer, in, &out, nil)
	require.NoError(t, menu.Run(context.Background()))
	return out.String()
}

var addHoodie = []string{"1", "h", "w", "Essentials", "Fear of God Hoodie", "Oat", "45", "90", "T2", "9, 9, 10"}

func TestAddThenView(t *testing.T) {
	s := newSession(t)
	out := s.run(t, append(addHoodie, "2", "9")...)

	assert.Contains(t, out, "Product added with ID HW01 (3 units).")
	assert.Contains(t, out, "Fear of God Hoodie")
	assert.Contains(t, out, "3 units in stock.")
}

func TestSaleFlow(t *testing.T) {
	s := newSession(t)
	s.run(t, append(addHoodie, "9")...)

	out := s.run(t,
		"3", "HW01", "9", "2024-05-10", "120", "Ana", "paid cash",
		"3", "HW01", "11", "2024-05-10", "120", "Ana", "",
		"3", "ZZ01",
		"8",
		"9",
	)
	assert.Contains(t, out, "Available sizes for HW01: [9 (2), 10 (1)]")
	assert.Contains(t, out, "Sold item processed: HW01 size 9 for $120.00 USD.")
	assert.Contains(t, out, "Available sizes for HW01: [9 (1), 10 (1)]")
	assert.Contains(t, out, "Item not available in the specified size.")
	assert.Contains(t, out, "Product ID not found.")
	assert.Contains(t, out, "paid cash")

	data, err := os.ReadFile(filepath.Join(s.dir, "sold.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"), "header plus one sale")
}

func TestProfitOptions(t *testing.T) {
	s := newSession(t)
	out := s.run(t, append(addHoodie,
		"3", "HW01", "10", "2024-05-10", "100", "", "",
		"4",
		"5", "2024-05-01", "2024-05-31",
		"5", "2023-01-01", "2023-01-31",
		"5", "May", "2024-05-31",
		"9")...)

	assert.Contains(t, out, "T2")
	assert.Contains(t, out, "135.00")
	assert.Contains(t, out, "Net Profit from 2024-05-01 to 2024-05-31: $55.00 (products sold: 1)")
	assert.Contains(t, out, "Net Profit from 2023-01-01 to 2023-01-31: $0.00 (products sold: 0)")
	assert.Contains(t, out, "Error: ")
}

func TestReportAndSearchPages(t *testing.T) {
	s := newSession(t)
	out := s.run(t, append(addHoodie, "6", "7", "fear", "7", "jordan", "9")...)

	assert.Contains(t, out, "HTML report created: "+filepath.Join(s.dir, "index.html"))
	assert.Contains(t, out, "Search results HTML file created:")
	assert.Contains(t, out, "No products available.")

	gallery, err := os.ReadFile(filepath.Join(s.dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(gallery), "images/HW01.png")
}

func TestInvalidInputKeepsMenuRunning(t *testing.T) {
	s := newSession(t)
	out := s.run(t, "42", "1", "h", "w", "b", "n", "c", "forty", "90", "T1", "M", "2", "9")

	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "No products available.")
}

func TestEndOfInputExits(t *testing.T) {
	s := newSession(t)
	out := s.run(t, "1", "h")
	assert.Contains(t, out, "Enter product type: ")
}

type brokenTerminal struct{}

func (brokenTerminal) Write([]byte) (int, error) { return 0, errors.New("terminal gone") }

func TestViewReportsWriteFailures(t *testing.T) {
	s := newSession(t)
	s.run(t, append(addHoodie, "9")...)

	renderer, err := render.NewRenderer(config.ReportConfig{OutputPath: filepath.Join(s.dir, "index.html")}, nil)
	require.NoError(t, err)
	core, logs := observer.New(zapcore.ErrorLevel)

	in := strings.NewReader("2\n9\n")
	menu := New(stock.NewService(s.store, nil), reporting.NewService(s.store, nil, nil), renderer, in, brokenTerminal{}, zap.New(core))
	require.NoError(t, menu.Run(context.Background()))

	failures := logs.FilterMessage("menu action failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "2", failures[0].ContextMap()["option"])
	assert.Contains(t, failures[0].ContextMap()["error"], "terminal gone")
}
