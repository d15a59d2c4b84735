package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

// SaveOption inserts an option position or updates the row with the same code
func (db *DB) SaveOption(ctx context.Context, o *models.OptionPosition) error {
	query := `
		INSERT INTO option_positions (
			code, underlying_code, option_type, strike, expiry_date,
			premium_paid, target_price, last_close, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			underlying_code = EXCLUDED.underlying_code,
			option_type = EXCLUDED.option_type,
			strike = EXCLUDED.strike,
			expiry_date = EXCLUDED.expiry_date,
			premium_paid = EXCLUDED.premium_paid,
			target_price = EXCLUDED.target_price,
			last_close = EXCLUDED.last_close,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	lastClose := decimal.NullDecimal{}
	if o.LastClose != nil {
		lastClose = decimal.NewNullDecimal(*o.LastClose)
	}

	_, err := db.conn.ExecContext(ctx, query,
		o.Code, o.UnderlyingCode, o.OptionType, o.Strike, o.ExpiryDate,
		o.PremiumPaid, o.TargetPrice, lastClose, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save option position: %w", err)
	}
	return nil
}

// ListOptions retrieves all option positions ordered by expiry then code
func (db *DB) ListOptions(ctx context.Context) ([]models.OptionPosition, error) {
	query := `
		SELECT code, underlying_code, option_type, strike, expiry_date,
		       premium_paid, target_price, last_close
		FROM option_positions
		ORDER BY expiry_date ASC, code ASC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query option positions: %w", err)
	}
	defer rows.Close()

	var out []models.OptionPosition
	for rows.Next() {
		var o models.OptionPosition
		var lastClose decimal.NullDecimal

		err := rows.Scan(
			&o.Code, &o.UnderlyingCode, &o.OptionType, &o.Strike, &o.ExpiryDate,
			&o.PremiumPaid, &o.TargetPrice, &lastClose,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option position: %w", err)
		}
		if lastClose.Valid {
			o.LastClose = &lastClose.Decimal
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate option positions: %w", err)
	}
	return out, nil
}

// DeleteOption removes an option position by code
func (db *DB) DeleteOption(ctx context.Context, code string) error {
	code = ticker.Normalize(code)
	result, err := db.conn.ExecContext(ctx, `DELETE FROM option_positions WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete option position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrOptionNotFound, code)
	}
	return nil
}
