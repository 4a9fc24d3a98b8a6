package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/domain/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// usToEU is the men's sneaker conversion shown on the gallery when enabled.
var usToEU = map[string]string{
	"7":  "40",
	"8":  "41",
	"9":  "42",
	"10": "43",
	"11": "44",
	"12": "45",
}

// Card is one product on the gallery page.
type Card struct {
	ID    string
	Name  string
	Brand string
	Color string
	Price string
	Image string
	Sizes []string
	Units int
}

// Row is one line of the search results table.
type Row struct {
	ID    string
	Name  string
	Size  string
	Count int
	Price string
	Image string
}

type galleryPage struct {
	Title   string
	EUSizes bool
	Cards   []Card
}

type searchPage struct {
	Title string
	Term  string
	Rows  []Row
}

// Renderer turns availability snapshots into static HTML pages.
type Renderer struct {
	cfg       config.ReportConfig
	templates *template.Template
	logger    *zap.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(cfg config.ReportConfig, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ImagesDir == "" {
		cfg.ImagesDir = "images"
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{cfg: cfg, templates: tmpl, logger: logger}, nil
}

// Cards groups a snapshot into one card per product, keeping snapshot order.
func (r *Renderer) Cards(snapshot models.Snapshot) []Card {
	var cards []Card
	index := make(map[string]int)
	for _, e := range snapshot.Entries {
		if e.Count <= 0 {
			continue
		}
		size := e.Size
		if r.cfg.EUSizes {
			size = EUSize(size)
		}
		pos, ok := index[e.ProductID]
		if !ok {
			pos = len(cards)
			index[e.ProductID] = pos
			cards = append(cards, Card{
				ID:    e.ProductID,
				Name:  e.Name,
				Brand: e.Brand,
				Color: e.Color,
				Price: e.ExpectedPrice.Truncate(0).String(),
				Image: r.ImagePath(e.ProductID),
			})
		}
		cards[pos].Sizes = appendUnique(cards[pos].Sizes, size)
		cards[pos].Units += e.Count
	}
	return cards
}

// ImagePath resolves a product picture by convention: <images dir>/<id>.png.
func (r *Renderer) ImagePath(productID string) string {
	return path.Join(filepath.ToSlash(r.cfg.ImagesDir), productID+".png")
}

// Gallery writes the customer-facing product page.
func (r *Renderer) Gallery(w io.Writer, snapshot models.Snapshot) error {
	page := galleryPage{Title: r.cfg.Title, EUSizes: r.cfg.EUSizes, Cards: r.Cards(snapshot)}
	if err := r.templates.ExecuteTemplate(w, "gallery.html", page); err != nil {
		return fmt.Errorf("render gallery: %w", err)
	}
	return nil
}

// SearchResults writes a table of the entries matching term.
func (r *Renderer) SearchResults(w io.Writer, term string, snapshot models.Snapshot) error {
	page := searchPage{Title: r.cfg.Title, Term: term}
	for _, e := range snapshot.Entries {
		page.Rows = append(page.Rows, Row{
			ID:    e.ProductID,
			Name:  e.Name,
			Size:  e.Size,
			Count: e.Count,
			Price: e.ExpectedPrice.StringFixed(2),
			Image: r.ImagePath(e.ProductID),
		})
	}
	if err := r.templates.ExecuteTemplate(w, "search.html", page); err != nil {
		return fmt.Errorf("render search results: %w", err)
	}
	return nil
}

// WriteGallery renders the gallery to the configured output file.
func (r *Renderer) WriteGallery(snapshot models.Snapshot) (string, error) {
	return r.cfg.OutputPath, r.writeFile(r.cfg.OutputPath, func(w io.Writer) error {
		return r.Gallery(w, snapshot)
	})
}

// WriteSearchResults renders a search result page to the configured output file.
func (r *Renderer) WriteSearchResults(term string, snapshot models.Snapshot) (string, error) {
	return r.cfg.SearchOutputPath, r.writeFile(r.cfg.SearchOutputPath, func(w io.Writer) error {
		return r.SearchResults(w, term, snapshot)
	})
}

func (r *Renderer) writeFile(target string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	r.logger.Info("page written", zap.String("path", target), zap.Int("bytes", buf.Len()))
	return nil
}

// EUSize converts a US men's size, returning the label unchanged when unknown.
func EUSize(us string) string {
	if eu, ok := usToEU[us]; ok {
		return eu
	}
	return us
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
