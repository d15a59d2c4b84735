package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

// SavePosition inserts a position or updates the existing row with the same code
func (db *DB) SavePosition(ctx context.Context, p *models.Position) error {
	query := `
		INSERT INTO positions (code, avg_price, target_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			avg_price = EXCLUDED.avg_price,
			target_price = EXCLUDED.target_price,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	p.Code = ticker.Normalize(p.Code)

	_, err := db.conn.ExecContext(ctx, query, p.Code, p.AvgPrice, p.TargetPrice, now, now)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

// GetPosition retrieves a position by code
func (db *DB) GetPosition(ctx context.Context, code string) (*models.Position, error) {
	query := `
		SELECT code, avg_price, target_price, updated_at
		FROM positions
		WHERE code = $1
	`
	code = ticker.Normalize(code)

	var p models.Position
	err := db.conn.QueryRowContext(ctx, query, code).Scan(&p.Code, &p.AvgPrice, &p.TargetPrice, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

// ListPositions retrieves all positions ordered by code
func (db *DB) ListPositions(ctx context.Context) ([]models.Position, error) {
	query := `
		SELECT code, avg_price, target_price, updated_at
		FROM positions
		ORDER BY code ASC
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.Code, &p.AvgPrice, &p.TargetPrice, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}

// DeletePosition removes a position by code
func (db *DB) DeletePosition(ctx context.Context, code string) error {
	code = ticker.Normalize(code)
	result, err := db.conn.ExecContext(ctx, `DELETE FROM positions WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	return nil
}

// ReplaceAllPositions swaps the whole position table for the given set in one transaction
func (db *DB) ReplaceAllPositions(ctx context.Context, positions []models.Position) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	now := time.Now()
	for i := range positions {
		p := &positions[i]
		p.Code = ticker.Normalize(p.Code)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO positions (code, avg_price, target_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, p.Code, p.AvgPrice, p.TargetPrice, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.Code, err)
		}
		p.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
