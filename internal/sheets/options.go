package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

// ListOptions reads the options tab, creating it when missing
func (c *Client) ListOptions(ctx context.Context) ([]models.OptionPosition, error) {
	if err := c.ensureTab(ctx, c.tabs.Options, optionsHeader); err != nil {
		return nil, err
	}
	rows, err := c.readRows(ctx, c.tabs.Options, len(optionsHeader))
	if err != nil {
		return nil, err
	}

	var out []models.OptionPosition
	for i, r := range rows {
		if i == 0 || len(r) == 0 {
			continue
		}
		code := ticker.Normalize(cellString(r[0]))
		if code == "" {
			continue
		}
		o := models.OptionPosition{
			Code:           code,
			UnderlyingCode: ticker.Normalize(cellString(cell(r, 1))),
			OptionType:     cellString(cell(r, 2)),
			Strike:         c.storedNumber(code, "strike", cell(r, 4)),
			PremiumPaid:    c.storedNumber(code, "preco_medio", cell(r, 5)),
			TargetPrice:    c.storedNumber(code, "preco_objetivo", cell(r, 6)),
			LastClose:      c.storedOptional(code, "ultimo_fechamento", cell(r, 7)),
		}
		if s := cellString(cell(r, 3)); s != "" {
			expiry, err := time.Parse(models.DateLayout, s)
			if err != nil {
				c.logger.Warn("unreadable option expiry", zap.String("code", code), zap.Error(err))
			}
			o.ExpiryDate = expiry
		}
		out = append(out, o)
	}
	return out, nil
}

// SaveOption updates the row with the same code or appends a new one
func (c *Client) SaveOption(ctx context.Context, o *models.OptionPosition) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ensureTab(ctx, c.tabs.Options, optionsHeader); err != nil {
		return err
	}
	rows, err := c.readRows(ctx, c.tabs.Options, len(optionsHeader))
	if err != nil {
		return err
	}

	values := []any{
		o.Code,
		o.UnderlyingCode,
		o.OptionType,
		o.ExpiryDate.Format(models.DateLayout),
		o.Strike.InexactFloat64(),
		o.PremiumPaid.InexactFloat64(),
		o.TargetPrice.InexactFloat64(),
		optionalCell(o.LastClose),
	}
	if row := findRow(rows, o.Code, ticker.Normalize); row > 0 {
		return c.writeRow(ctx, c.tabs.Options, row, values)
	}
	return c.appendRow(ctx, c.tabs.Options, values)
}

// DeleteOption removes the row for code
func (c *Client) DeleteOption(ctx context.Context, code string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ensureTab(ctx, c.tabs.Options, optionsHeader); err != nil {
		return err
	}
	code = ticker.Normalize(code)
	rows, err := c.readRows(ctx, c.tabs.Options, len(optionsHeader))
	if err != nil {
		return err
	}
	row := findRow(rows, code, ticker.Normalize)
	if row == 0 {
		return fmt.Errorf("%w: %s", models.ErrOptionNotFound, code)
	}
	return c.deleteRow(ctx, c.tabs.Options, row)
}
