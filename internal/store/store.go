package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/repository/tabular"
)

// Store maps the catalog, availability and sales tables onto typed records.
// Every call reads or rewrites a whole table.
type Store struct {
	repo   tabular.Repository
	layout Layout
	tables Tables
	logger *zap.Logger
}

// New wires a store over repo. An empty layout falls back to LayoutPerSize.
func New(repo tabular.Repository, layout Layout, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if layout == "" {
		layout = LayoutPerSize
	}
	return &Store{repo: repo, layout: layout, tables: DefaultTables, logger: logger}
}

// Layout returns the layout used when writing.
func (s *Store) Layout() Layout {
	return s.layout
}

// Bootstrap writes the canonical header into every table that is missing or empty.
// A table holding only a header that lacks canonical columns (as older tools
// created them) gets the canonical header; tables with data are left alone.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, t := range []struct {
		name   string
		header []string
	}{
		{s.tables.Catalog, CatalogHeader},
		{s.tables.Availability, AvailabilityHeader},
		{s.tables.Sales, SalesHeader},
	} {
		rows, err := s.repo.ReadTable(ctx, t.name)
		if err != nil && !errors.Is(err, tabular.ErrTableNotFound) {
			return fmt.Errorf("inspect table %s: %w", t.name, err)
		}

		msg := "table initialized"
		switch {
		case len(rows) == 0:
		case len(rows) == 1 && !coversHeader(parseHeader(rows[0]), t.header):
			msg = "table header upgraded"
		default:
			continue
		}
		if err := s.repo.WriteTable(ctx, t.name, [][]string{t.header}); err != nil {
			return fmt.Errorf("initialize table %s: %w", t.name, err)
		}
		s.logger.Info(msg, zap.String("table", t.name))
	}
	return nil
}

func coversHeader(h header, want []string) bool {
	for _, col := range want {
		if !h.has(col) {
			return false
		}
	}
	return true
}

// read returns the rows of a table; a missing table reads as empty.
func (s *Store) read(ctx context.Context, name string) ([][]string, error) {
	rows, err := s.repo.ReadTable(ctx, name)
	if errors.Is(err, tabular.ErrTableNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return rows, nil
}

func (s *Store) write(ctx context.Context, name string, header []string, body [][]string) error {
	rows := make([][]string, 0, len(body)+1)
	rows = append(rows, header)
	rows = append(rows, body...)
	if err := s.repo.WriteTable(ctx, name, rows); err != nil {
		return fmt.Errorf("write table %s: %w", name, err)
	}
	return nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
