package sheets

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

// ListPositions reads every row of the positions tab
func (c *Client) ListPositions(ctx context.Context) ([]models.Position, error) {
	rows, err := c.readRows(ctx, c.tabs.Positions, len(positionsHeader))
	if err != nil {
		return nil, err
	}

	var positions []models.Position
	for i, r := range rows {
		if i == 0 || len(r) == 0 {
			continue
		}
		code := ticker.Normalize(cellString(r[0]))
		if code == "" {
			continue
		}
		positions = append(positions, models.Position{
			Code:        code,
			AvgPrice:    c.storedNumber(code, "preco_medio", cell(r, 1)),
			TargetPrice: c.storedNumber(code, "preco_teto", cell(r, 2)),
		})
	}
	return positions, nil
}

// GetPosition returns the row for code
func (c *Client) GetPosition(ctx context.Context, code string) (*models.Position, error) {
	code = ticker.Normalize(code)
	positions, err := c.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		if positions[i].Code == code {
			return &positions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
}

// SavePosition updates the row with the same code or appends a new one
func (c *Client) SavePosition(ctx context.Context, p *models.Position) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	p.Code = ticker.Normalize(p.Code)
	rows, err := c.readRows(ctx, c.tabs.Positions, len(positionsHeader))
	if err != nil {
		return err
	}
	values := []any{p.Code, p.AvgPrice.InexactFloat64(), p.TargetPrice.InexactFloat64()}

	if row := findRow(rows, p.Code, ticker.Normalize); row > 0 {
		return c.writeRow(ctx, c.tabs.Positions, row, values)
	}
	if len(rows) == 0 {
		if err := c.writeRow(ctx, c.tabs.Positions, 1, positionsHeader); err != nil {
			return err
		}
	}
	return c.appendRow(ctx, c.tabs.Positions, values)
}

// DeletePosition removes the row for code
func (c *Client) DeletePosition(ctx context.Context, code string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	code = ticker.Normalize(code)
	rows, err := c.readRows(ctx, c.tabs.Positions, len(positionsHeader))
	if err != nil {
		return err
	}
	row := findRow(rows, code, ticker.Normalize)
	if row == 0 {
		return fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	return c.deleteRow(ctx, c.tabs.Positions, row)
}

// storedNumber parses a cell a human may have typed, reading garbage as zero
func (c *Client) storedNumber(code, field string, v any) decimal.Decimal {
	d, err := locale.ParseValue(v)
	if err != nil {
		c.logger.Warn("unreadable number in sheet, using zero",
			zap.String("code", code), zap.String("field", field), zap.Error(err))
		return decimal.Zero
	}
	return d
}

// storedOptional is storedNumber for cells where blank means absent
func (c *Client) storedOptional(code, field string, v any) *decimal.Decimal {
	if cellString(v) == "" {
		return nil
	}
	d := c.storedNumber(code, field, v)
	return &d
}
