package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/repository/tabular"
)

// Repository keeps each table in <dir>/<name>.csv.
type Repository struct {
	dir    string
	logger *zap.Logger
}

// NewRepository builds a CSV backed repository rooted at dir.
func NewRepository(dir string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	return &Repository{dir: dir, logger: logger}
}

// Path returns the file backing the named table.
func (r *Repository) Path(name string) string {
	return filepath.Join(r.dir, name+".csv")
}

// ReadTable loads every record of the table, header included.
func (r *Repository) ReadTable(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, tabular.ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.Path(name), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Older files lack the trailing Count column on some rows.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", r.Path(name), err, models.ErrStorageUnreadable)
	}

	r.logger.Debug("table loaded", zap.String("table", name), zap.Int("rows", len(rows)))
	return rows, nil
}

// WriteTable replaces the table content. The file is swapped in with a rename so a
// failed write leaves the previous content in place.
func (r *Repository) WriteTable(ctx context.Context, name string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", r.dir, err)
	}

	tmp, err := os.CreateTemp(r.dir, name+".*.csv.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), r.Path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", r.Path(name), err)
	}

	r.logger.Debug("table written", zap.String("table", name), zap.Int("rows", len(rows)))
	return nil
}
