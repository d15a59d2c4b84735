// Package sheets stores positions, option positions and the quote cache in
// a Google Sheets spreadsheet, one tab per record kind.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrSpreadsheetNotFound is returned when the configured spreadsheet does not exist
// or is not shared with the service account
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

const (
	valueInputRaw     = "RAW"
	renderUnformatted = "UNFORMATTED_VALUE"
	newTabRows        = 500
)

var (
	positionsHeader = []any{"codigo", "preco_medio", "preco_teto"}
	quotesHeader    = []any{"codigo", "ultima_cotacao", "preco_anterior", "data_hora"}
	optionsHeader   = []any{"codigo", "base", "tipo", "vencimento", "strike", "preco_medio", "preco_objetivo", "ultimo_fechamento"}
)

// Tabs names the worksheet used for each record kind
type Tabs struct {
	Positions string
	Quotes    string
	Options   string
}

// Client reads and writes the spreadsheet
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	tabs          Tabs
	logger        *zap.Logger

	mu       sync.Mutex
	sheetIDs map[string]int64
	ensured  map[string]bool

	// serializes read-then-write row updates from this process
	writeMu sync.Mutex
}

// New authenticates with service-account JSON and opens the spreadsheet
func New(ctx context.Context, credentialsJSON, spreadsheetID string, tabs Tabs, logger *zap.Logger) (*Client, error) {
	return NewWithOptions(ctx, spreadsheetID, tabs, logger,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
}

// NewWithOptions opens the spreadsheet with explicit client options
func NewWithOptions(ctx context.Context, spreadsheetID string, tabs Tabs, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tabs:          tabs,
		logger:        logger,
		sheetIDs:      make(map[string]int64),
		ensured:       make(map[string]bool),
	}

	first, err := c.loadSheetIDs(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := c.sheetIDs[tabs.Positions]; !ok && first != "" {
		logger.Warn("positions tab not found, using first tab",
			zap.String("tab", tabs.Positions), zap.String("fallback", first))
		c.tabs.Positions = first
	}
	return c, nil
}

func (c *Client) loadSheetIDs(ctx context.Context) (string, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields(googleapi.Field("sheets.properties")).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, c.spreadsheetID)
		}
		return "", fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var first string
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		if first == "" {
			first = s.Properties.Title
		}
		c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
	}
	return first, nil
}

// ensureTab creates the tab with its header when missing and rewrites a
// header that has fewer columns than expected
func (c *Client) ensureTab(ctx context.Context, tab string, header []any) error {
	c.mu.Lock()
	if c.ensured[tab] {
		c.mu.Unlock()
		return nil
	}
	_, exists := c.sheetIDs[tab]
	c.mu.Unlock()

	if !exists {
		resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: tab,
						GridProperties: &sheets.GridProperties{
							RowCount:    newTabRows,
							ColumnCount: int64(len(header)),
						},
					},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to create tab %s: %w", tab, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
			c.mu.Lock()
			c.sheetIDs[tab] = resp.Replies[0].AddSheet.Properties.SheetId
			c.mu.Unlock()
		}
		c.logger.Info("created tab", zap.String("tab", tab))
		if err := c.writeRow(ctx, tab, 1, header); err != nil {
			return err
		}
	} else {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(tab, "A1:"+column(len(header))+"1")).
			ValueRenderOption(renderUnformatted).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to read header of %s: %w", tab, err)
		}
		if len(resp.Values) == 0 || len(resp.Values[0]) < len(header) {
			if err := c.writeRow(ctx, tab, 1, header); err != nil {
				return err
			}
		}
	}

	c.mu.Lock()
	c.ensured[tab] = true
	c.mu.Unlock()
	return nil
}

func (c *Client) readRows(ctx context.Context, tab string, width int) ([][]any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1(tab, "A:"+column(width))).
		ValueRenderOption(renderUnformatted).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	return resp.Values, nil
}

// writeRow overwrites the cells of one row, starting at column A
func (c *Client) writeRow(ctx context.Context, tab string, row int, values []any) error {
	rng := a1(tab, fmt.Sprintf("A%d:%s%d", row, column(len(values)), row))
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{values}}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) appendRow(ctx context.Context, tab string, values []any) error {
	rng := a1(tab, "A:"+column(len(values)))
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{values}}).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", tab, err)
	}
	return nil
}

// deleteRow removes a 1-based row from the tab
func (c *Client) deleteRow(ctx context.Context, tab string, row int) error {
	c.mu.Lock()
	sheetID, ok := c.sheetIDs[tab]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown tab %s", tab)
	}

	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(row - 1),
					EndIndex:        int64(row),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete row %d of %s: %w", row, tab, err)
	}
	return nil
}

// findRow returns the 1-based row whose first cell equals code, or 0
func findRow(rows [][]any, code string, normalize func(string) string) int {
	for i, r := range rows {
		if i == 0 || len(r) == 0 {
			continue
		}
		if normalize(cellString(r[0])) == code {
			return i + 1
		}
	}
	return 0
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func a1(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}

// column returns the letter of the n-th column, n in 1..26
func column(n int) string {
	return string(rune('A' + n - 1))
}
