package tabular

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned by ReadTable when the named table does not exist yet.
var ErrTableNotFound = errors.New("table not found")

// Repository stores whole tables of text cells. The first row of a table is its header.
// Tables are always read and rewritten wholesale.
type Repository interface {
	ReadTable(ctx context.Context, name string) ([][]string, error)
	WriteTable(ctx context.Context, name string, rows [][]string) error
}
