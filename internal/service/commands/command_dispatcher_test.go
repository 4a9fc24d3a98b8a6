package commands

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/importados/internal/domain/models"
)

type stubStock struct {
	snapshot models.Snapshot
}

func (s stubStock) Available(context.Context) (models.Snapshot, error) { return s.snapshot, nil }

func (s stubStock) Search(_ context.Context, term string) (models.Snapshot, error) {
	return s.snapshot.FilterByName(term), nil
}

func (s stubStock) SizesFor(_ context.Context, id string) ([]models.AvailabilityEntry, error) {
	entries := s.snapshot.ForProduct(id)
	if len(entries) == 0 {
		return nil, models.ErrNotFound
	}
	return entries, nil
}

type stubReporting struct {
	start, end time.Time
}

func (r *stubReporting) ExpectedProfit(context.Context) ([]models.ExpectedProfitRow, error) {
	return []models.ExpectedProfitRow{{
		TripNumber:           "T1",
		GrossCost:            decimal.NewFromInt(100),
		ExpectedSellingPrice: decimal.NewFromInt(250),
		ExpectedProfit:       decimal.NewFromInt(150),
		NumberOfProducts:     2,
	}}, nil
}

func (r *stubReporting) NetProfit(_ context.Context, start, end time.Time) (models.NetProfitSummary, error) {
	r.start, r.end = start, end
	return models.NetProfitSummary{Start: start, End: end, Revenue: decimal.NewFromInt(120), Cost: decimal.NewFromInt(50), NetProfit: decimal.NewFromInt(70), ProductsSold: 1}, nil
}

func (r *stubReporting) WeeklySummary(context.Context, time.Time) (string, error) {
	return "weekly", nil
}

func newDispatcher() (*Service, *stubReporting) {
	snapshot := models.Snapshot{Entries: []models.AvailabilityEntry{
		{ProductID: "SM01", Name: "Air Max 90", Size: "9", Count: 2},
		{ProductID: "SM01", Name: "Air Max 90", Size: "10", Count: 1},
		{ProductID: "HW01", Name: "Hoodie", Size: "M", Count: 1},
	}}
	rep := &stubReporting{}
	return NewService(stubStock{snapshot: snapshot}, rep, nil), rep
}

func TestStockReply(t *testing.T) {
	svc, _ := newDispatcher()
	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/stock"), "54911")
	require.NoError(t, err)
	assert.Equal(t, "In stock: 4 units.\nSM01 Air Max 90: 3 (9, 10)\nHW01 Hoodie: 1 (M)", reply)
}

func TestSearchReply(t *testing.T) {
	svc, _ := newDispatcher()
	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/search air max"), "54911")
	require.NoError(t, err)
	assert.Contains(t, reply, "SM01 Air Max 90")
	assert.NotContains(t, reply, "HW01")

	reply, err = svc.HandleCommand(context.Background(), models.ParseCommand("/search jordan"), "54911")
	require.NoError(t, err)
	assert.Equal(t, "Matches for \"jordan\": nothing.", reply)
}

func TestSizesReply(t *testing.T) {
	svc, _ := newDispatcher()
	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/sizes SM01"), "54911")
	require.NoError(t, err)
	assert.Equal(t, "SM01 Air Max 90: 9 (2), 10 (1)", reply)

	reply, err = svc.HandleCommand(context.Background(), models.ParseCommand("/sizes ZZ01"), "54911")
	require.NoError(t, err)
	assert.Equal(t, "ZZ01 is not in stock.", reply)

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("/sizes"), "54911")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestNetReply(t *testing.T) {
	svc, rep := newDispatcher()
	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/net 2024-05-01 2024-05-31"), "54911")
	require.NoError(t, err)
	assert.Equal(t, "Net profit (2024-05-01-2024-05-31): 70.00 USD from 1 sales (revenue 120.00, cost 50.00).", reply)
	assert.Equal(t, 31, rep.end.Day())

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("/net last-week"), "54911")
	assert.ErrorIs(t, err, ErrInvalidArguments)
	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("/net 01/05/2024 2024-05-31"), "54911")
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestProfitReply(t *testing.T) {
	svc, _ := newDispatcher()
	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("profit"), "54911")
	require.NoError(t, err)
	assert.Contains(t, reply, "T1: cost 100.00, expected 250.00, profit 150.00 USD (2 units)")
}

func TestUnknownCommand(t *testing.T) {
	svc, _ := newDispatcher()
	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/sell HW01 M"), "54911")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/help"), "54911")
	require.NoError(t, err)
	assert.Equal(t, HelpText, reply)
}
