package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/render"
	"github.com/mamadbah2/importados/internal/repository/memory"
	"github.com/mamadbah2/importados/internal/server/handlers"
	"github.com/mamadbah2/importados/internal/service/reporting"
	"github.com/mamadbah2/importados/internal/service/stock"
	whatsappsvc "github.com/mamadbah2/importados/internal/service/whatsapp"
	"github.com/mamadbah2/importados/internal/store"
)

type RouterSuite struct {
	suite.Suite
	server *httptest.Server
	images string
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	st := store.New(memory.NewRepository(), store.LayoutPerSize, nil)
	s.Require().NoError(st.Bootstrap(ctx))

	stockSvc := stock.NewService(st, nil)
	_, err := stockSvc.AddProduct(ctx, models.NewProduct{
		Type: "s", Gender: "m", Brand: "Nike", Name: "Air Max 90", Color: "White",
		Cost: "80", ExpectedPrice: "150", TripNumber: "T1", Sizes: []string{"9", "9", "10"},
	})
	s.Require().NoError(err)
	_, err = stockSvc.SellItem(ctx, models.Sale{ProductID: "SM01", Size: "10", SellingDate: "2024-05-02", FinalPrice: "140"})
	s.Require().NoError(err)

	renderer, err := render.NewRenderer(config.ReportConfig{Title: "fily"}, nil)
	s.Require().NoError(err)

	s.images = s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(s.images, "SM01.png"), []byte("png"), 0o644))

	inventory := handlers.NewInventoryHandler(stockSvc, reporting.NewService(st, nil, nil), renderer, nil)
	webhook := handlers.NewWebhookHandler(whatsappsvc.NoopMessagingService{}, nil)
	s.server = httptest.NewServer(New(Options{Inventory: inventory, Webhook: webhook, ImagesDir: s.images}, nil))
	s.T().Cleanup(s.server.Close)
}

func (s *RouterSuite) get(path string) (*http.Response, string) {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	var b strings.Builder
	_, err = io.Copy(&b, resp.Body)
	s.Require().NoError(err)
	return resp, b.String()
}

func (s *RouterSuite) TestHealthz() {
	resp, body := s.get("/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"status":"ok"}`, body)
}

func (s *RouterSuite) TestAvailable() {
	resp, body := s.get("/api/available")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var got struct {
		Units   int `json:"units"`
		Entries []struct {
			ID    string `json:"id"`
			Size  string `json:"size"`
			Count int    `json:"count"`
			Price string `json:"expected_price"`
		} `json:"entries"`
	}
	s.Require().NoError(json.Unmarshal([]byte(body), &got))
	s.Equal(2, got.Units)
	s.Require().Len(got.Entries, 1)
	s.Equal("SM01", got.Entries[0].ID)
	s.Equal("9", got.Entries[0].Size)
	s.Equal("150.00", got.Entries[0].Price)
}

func (s *RouterSuite) TestSearch() {
	_, body := s.get("/api/search?q=AIR")
	s.Contains(body, `"id":"SM01"`)

	_, body = s.get("/api/search?q=jordan")
	s.JSONEq(`{"units":0,"entries":[]}`, body)
}

func (s *RouterSuite) TestExpectedProfit() {
	_, body := s.get("/api/profit/expected")
	s.Contains(body, `"trip_number":"T1"`)
	s.Contains(body, `"number_of_products":3`)
	s.Contains(body, `"expected_profit":"210"`)
}

func (s *RouterSuite) TestNetProfit() {
	resp, body := s.get("/api/profit/net?start=2024-05-01&end=2024-05-02")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, `"products_sold":1`)
	s.Contains(body, `"net_profit":"60"`)

	resp, _ = s.get("/api/profit/net?start=may&end=2024-05-02")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RouterSuite) TestGalleryAndImages() {
	resp, body := s.get("/")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/html")
	s.Contains(body, "Air Max 90")
	s.Contains(body, `src="images/SM01.png"`)

	resp, body = s.get("/images/SM01.png")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("png", body)
}

func (s *RouterSuite) TestWebhookVerificationFailsWithoutCredentials() {
	resp, _ := s.get("/webhook?hub.mode=subscribe&hub.verify_token=x&hub.challenge=1")
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestWebhookRoutesAreOptional(t *testing.T) {
	st := store.New(memory.NewRepository(), store.LayoutPerSize, nil)
	renderer, err := render.NewRenderer(config.ReportConfig{}, nil)
	require.NoError(t, err)
	inventory := handlers.NewInventoryHandler(stock.NewService(st, nil), reporting.NewService(st, nil, nil), renderer, nil)

	engine := New(Options{Inventory: inventory}, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/available", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
