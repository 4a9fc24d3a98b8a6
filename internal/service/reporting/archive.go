package reporting

import (
	"context"

	"github.com/mamadbah2/importados/internal/domain/models"
)

// Archive stores profit snapshots for later comparison.
type Archive interface {
	SaveProfitSnapshot(ctx context.Context, snapshot models.ProfitSnapshot) error
	// LatestProfitSnapshot returns nil when nothing has been archived yet.
	LatestProfitSnapshot(ctx context.Context) (*models.ProfitSnapshot, error)
}

// NoopArchive discards snapshots. Used when no MongoDB URI is configured.
type NoopArchive struct{}

// SaveProfitSnapshot does nothing.
func (NoopArchive) SaveProfitSnapshot(context.Context, models.ProfitSnapshot) error { return nil }

// LatestProfitSnapshot always reports an empty archive.
func (NoopArchive) LatestProfitSnapshot(context.Context) (*models.ProfitSnapshot, error) {
	return nil, nil
}
