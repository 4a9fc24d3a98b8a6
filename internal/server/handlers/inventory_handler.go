package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/service/reporting"
)

// StockReader is the read side of the stock service.
type StockReader interface {
	Available(ctx context.Context) (models.Snapshot, error)
	Search(ctx context.Context, term string) (models.Snapshot, error)
}

// ProfitReader is the subset of the reporting service the API exposes.
type ProfitReader interface {
	ExpectedProfit(ctx context.Context) ([]models.ExpectedProfitRow, error)
	NetProfit(ctx context.Context, start, end time.Time) (models.NetProfitSummary, error)
}

// GalleryRenderer writes the customer-facing HTML page.
type GalleryRenderer interface {
	Gallery(w io.Writer, snapshot models.Snapshot) error
}

// InventoryHandler serves read-only stock and profit data.
type InventoryHandler struct {
	stock    StockReader
	profit   ProfitReader
	renderer GalleryRenderer
	logger   *zap.Logger
}

type entryResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Gender        string `json:"gender"`
	Brand         string `json:"brand"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	ExpectedPrice string `json:"expected_price"`
	TripNumber    string `json:"trip_number"`
	Size          string `json:"size"`
	Count         int    `json:"count"`
}

type snapshotResponse struct {
	Units   int             `json:"units"`
	Entries []entryResponse `json:"entries"`
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(stock StockReader, profit ProfitReader, renderer GalleryRenderer, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{stock: stock, profit: profit, renderer: renderer, logger: logger}
}

// Available lists every (product, size) still in stock.
func (h *InventoryHandler) Available(c *gin.Context) {
	snapshot, err := h.stock.Available(c.Request.Context())
	if err != nil {
		h.fail(c, "load availability", err)
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(snapshot))
}

// Search filters stock by product name with the q query parameter.
func (h *InventoryHandler) Search(c *gin.Context) {
	snapshot, err := h.stock.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, "search availability", err)
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(snapshot))
}

// ExpectedProfit returns the per-trip expected profit.
func (h *InventoryHandler) ExpectedProfit(c *gin.Context) {
	rows, err := h.profit.ExpectedProfit(c.Request.Context())
	if err != nil {
		h.fail(c, "expected profit", err)
		return
	}
	if rows == nil {
		rows = []models.ExpectedProfitRow{}
	}
	c.JSON(http.StatusOK, gin.H{"trips": rows})
}

// NetProfit returns the realised profit between start and end (YYYY-MM-DD, inclusive).
func (h *InventoryHandler) NetProfit(c *gin.Context) {
	start, end, err := reporting.ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be YYYY-MM-DD"})
		return
	}
	summary, err := h.profit.NetProfit(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, "net profit", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Gallery renders the product page from the current stock.
func (h *InventoryHandler) Gallery(c *gin.Context) {
	snapshot, err := h.stock.Available(c.Request.Context())
	if err != nil {
		h.fail(c, "load availability", err)
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Gallery(&buf, snapshot); err != nil {
		h.fail(c, "render gallery", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *InventoryHandler) fail(c *gin.Context, op string, err error) {
	h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	status := http.StatusInternalServerError
	if errors.Is(err, models.ErrStorageUnreadable) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": op + " failed"})
}

func toSnapshotResponse(snapshot models.Snapshot) snapshotResponse {
	resp := snapshotResponse{Units: snapshot.Units(), Entries: make([]entryResponse, 0, len(snapshot.Entries))}
	for _, e := range snapshot.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			ID:            e.ProductID,
			Type:          string(e.Type),
			Gender:        string(e.Gender),
			Brand:         e.Brand,
			Name:          e.Name,
			Color:         e.Color,
			ExpectedPrice: e.ExpectedPrice.StringFixed(2),
			TripNumber:    e.TripNumber,
			Size:          e.Size,
			Count:         e.Count,
		})
	}
	return resp
}
