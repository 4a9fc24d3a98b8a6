package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/importados/internal/repository/tabular"
)

// Repository is an in-process table store, used for dry runs and tests.
type Repository struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

// NewRepository returns an empty store.
func NewRepository() *Repository {
	return &Repository{tables: make(map[string][][]string)}
}

// ReadTable returns a copy of the named table.
func (r *Repository) ReadTable(_ context.Context, name string) ([][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, ok := r.tables[name]
	if !ok {
		return nil, tabular.ErrTableNotFound
	}
	return cloneRows(rows), nil
}

// WriteTable replaces the named table with a copy of rows.
func (r *Repository) WriteTable(_ context.Context, name string, rows [][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tables[name] = cloneRows(rows)
	return nil
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
