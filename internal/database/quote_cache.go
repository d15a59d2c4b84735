package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
)

// SaveQuote upserts the cached snapshot for its code
func (db *DB) SaveQuote(ctx context.Context, q *models.QuoteSnapshot) error {
	query := `
		INSERT INTO quote_cache (code, current_price, previous_price, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			current_price = EXCLUDED.current_price,
			previous_price = EXCLUDED.previous_price,
			fetched_at = EXCLUDED.fetched_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		q.Code, nullDecimal(q.CurrentPrice), nullDecimal(q.PreviousPrice), q.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quote for %s: %w", q.Code, err)
	}
	return nil
}

// LoadQuotes returns every cached snapshot keyed by code
func (db *DB) LoadQuotes(ctx context.Context) (map[string]*models.QuoteSnapshot, error) {
	query := `SELECT code, current_price, previous_price, fetched_at FROM quote_cache`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote cache: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]*models.QuoteSnapshot)
	for rows.Next() {
		var q models.QuoteSnapshot
		var current, previous decimal.NullDecimal

		if err := rows.Scan(&q.Code, &current, &previous, &q.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached quote: %w", err)
		}
		if current.Valid {
			q.CurrentPrice = &current.Decimal
		}
		if previous.Valid {
			q.PreviousPrice = &previous.Decimal
		}
		quotes[q.Code] = &q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote cache: %w", err)
	}
	return quotes, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
