package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertHistory records a change in a position's classification
type AlertHistory struct {
	ID             int              `json:"id"`
	Code           string           `json:"codigo"`
	Classification string           `json:"classification"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	TargetPrice    decimal.Decimal  `json:"target_price"`
	TriggeredAt    time.Time        `json:"triggered_at"`
}
