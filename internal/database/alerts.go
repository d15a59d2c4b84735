package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
)

// RecordAlert appends a classification change to the alert history
func (db *DB) RecordAlert(ctx context.Context, a *models.AlertHistory) error {
	query := `
		INSERT INTO alert_history (code, classification, price, target_price, triggered_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now()
	}

	err := db.conn.QueryRowContext(ctx, query,
		a.Code, a.Classification, nullDecimal(a.Price), a.TargetPrice, a.TriggeredAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

// LatestAlert returns the newest alert for code, or nil when there is none
func (db *DB) LatestAlert(ctx context.Context, code string) (*models.AlertHistory, error) {
	query := `
		SELECT id, code, classification, price, target_price, triggered_at
		FROM alert_history
		WHERE code = $1
		ORDER BY triggered_at DESC, id DESC
		LIMIT 1
	`
	a, err := scanAlert(db.conn.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest alert: %w", err)
	}
	return a, nil
}

// AlertHistory returns up to limit alerts, newest first. An empty code
// returns alerts for all codes.
func (db *DB) AlertHistory(ctx context.Context, code string, limit int) ([]models.AlertHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, code, classification, price, target_price, triggered_at
		FROM alert_history
		ORDER BY triggered_at DESC, id DESC
		LIMIT $1
	`
	args := []any{limit}
	if code != "" {
		query = `
			SELECT id, code, classification, price, target_price, triggered_at
			FROM alert_history
			WHERE code = $2
			ORDER BY triggered_at DESC, id DESC
			LIMIT $1
		`
		args = append(args, code)
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	var history []models.AlertHistory
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert history: %w", err)
		}
		history = append(history, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert history: %w", err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*models.AlertHistory, error) {
	var a models.AlertHistory
	var price decimal.NullDecimal

	if err := row.Scan(&a.ID, &a.Code, &a.Classification, &price, &a.TargetPrice, &a.TriggeredAt); err != nil {
		return nil, err
	}
	if price.Valid {
		a.Price = &price.Decimal
	}
	return &a, nil
}
