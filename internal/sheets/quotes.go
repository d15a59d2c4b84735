package sheets

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"go.uber.org/zap"
)

// LoadQuotes reads the quote cache tab, creating it when missing
func (c *Client) LoadQuotes(ctx context.Context) (map[string]*models.QuoteSnapshot, error) {
	if err := c.ensureTab(ctx, c.tabs.Quotes, quotesHeader); err != nil {
		return nil, err
	}
	rows, err := c.readRows(ctx, c.tabs.Quotes, len(quotesHeader))
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]*models.QuoteSnapshot)
	for i, r := range rows {
		if i == 0 || len(r) == 0 {
			continue
		}
		code := cellString(r[0])
		if code == "" {
			continue
		}
		q := &models.QuoteSnapshot{
			Code:          code,
			CurrentPrice:  c.storedOptional(code, "ultima_cotacao", cell(r, 1)),
			PreviousPrice: c.storedOptional(code, "preco_anterior", cell(r, 2)),
		}
		if ts := cellString(cell(r, 3)); ts != "" {
			fetched, err := models.ParseQuoteTime(ts)
			if err != nil {
				c.logger.Warn("unreadable quote timestamp", zap.String("code", code), zap.Error(err))
			}
			q.FetchedAt = fetched
		}
		quotes[code] = q
	}
	return quotes, nil
}

// SaveQuote updates the cache row for the snapshot's code or appends one
func (c *Client) SaveQuote(ctx context.Context, q *models.QuoteSnapshot) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ensureTab(ctx, c.tabs.Quotes, quotesHeader); err != nil {
		return err
	}
	rows, err := c.readRows(ctx, c.tabs.Quotes, len(quotesHeader))
	if err != nil {
		return err
	}

	values := []any{q.Code, optionalCell(q.CurrentPrice), optionalCell(q.PreviousPrice), models.FormatQuoteTime(q.FetchedAt)}
	if row := findRow(rows, q.Code, identity); row > 0 {
		return c.writeRow(ctx, c.tabs.Quotes, row, values)
	}
	return c.appendRow(ctx, c.tabs.Quotes, values)
}

func optionalCell(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}

func identity(s string) string { return s }
