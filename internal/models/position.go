package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrPositionNotFound is returned by stores when no position has the requested code
var ErrPositionNotFound = errors.New("position not found")

// Position represents a tracked equity with the user's average and ceiling prices
type Position struct {
	Code        string          `json:"codigo"`
	AvgPrice    decimal.Decimal `json:"preco_medio"`
	TargetPrice decimal.Decimal `json:"preco_teto"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}
