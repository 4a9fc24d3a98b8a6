package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/repository/tabular"
)

// GoogleSheetRepository stores every table as a tab of one spreadsheet.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadTable fetches every populated cell of the tab named after the table.
func (r *GoogleSheetRepository) ReadTable(ctx context.Context, name string) ([][]string, error) {
	exists, err := r.hasSheet(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, tabular.ErrTableNotFound
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, name).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", name, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}

	r.logger.Debug("sheet loaded", zap.String("sheet", name), zap.Int("rows", len(rows)))
	return rows, nil
}

// WriteTable clears the tab, creating it when needed, and writes rows from A1.
func (r *GoogleSheetRepository) WriteTable(ctx context.Context, name string, rows [][]string) error {
	exists, err := r.hasSheet(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.addSheet(ctx, name); err != nil {
			return err
		}
	}

	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, name, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", name, err)
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	// RAW keeps size labels such as "09" from being turned into numbers.
	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, name+"!A1", &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write range %s: %w", name, err)
	}

	r.logger.Debug("sheet written", zap.String("sheet", name), zap.Int("rows", len(rows)))
	return nil
}

func (r *GoogleSheetRepository) hasSheet(ctx context.Context, name string) (bool, error) {
	spreadsheet, err := r.service.Spreadsheets.Get(r.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("load spreadsheet %s: %w", r.spreadsheetID, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *GoogleSheetRepository) addSheet(ctx context.Context, name string) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	r.logger.Info("sheet created", zap.String("sheet", name))
	return nil
}
