package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/importados/internal/domain/models"
)

func TestSnapshotDocumentKeepsAmounts(t *testing.T) {
	taken := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	snapshot := models.ProfitSnapshot{
		TakenAt: taken,
		Week: models.NetProfitSummary{
			Start:        taken.AddDate(0, 0, -6),
			End:          taken,
			Revenue:      decimal.RequireFromString("250.50"),
			Cost:         decimal.RequireFromString("120"),
			NetProfit:    decimal.RequireFromString("130.50"),
			ProductsSold: 3,
		},
		Expected: []models.ExpectedProfitRow{{
			TripNumber:           "T1",
			GrossCost:            decimal.RequireFromString("300"),
			ExpectedSellingPrice: decimal.RequireFromString("450.25"),
			NumberOfProducts:     4,
			ExpectedProfit:       decimal.RequireFromString("150.25"),
		}},
		UnitsAvailable: 7,
		CreatedAt:      taken,
	}

	doc := toDocument(snapshot)
	require.Equal(t, "130.5", doc.NetProfit)

	back := fromDocument(doc)
	require.True(t, back.Week.NetProfit.Equal(snapshot.Week.NetProfit))
	require.True(t, back.Expected[0].ExpectedSellingPrice.Equal(snapshot.Expected[0].ExpectedSellingPrice))
	require.Equal(t, 7, back.UnitsAvailable)
	require.Equal(t, 3, back.Week.ProductsSold)
}

func TestDecimalOrZero(t *testing.T) {
	require.True(t, decimalOrZero("oops").IsZero())
	require.True(t, decimalOrZero("1.5").Equal(decimal.NewFromFloat(1.5)))
}
