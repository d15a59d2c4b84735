package models

import "time"

// Event type constants
const (
	EventPositionSaved   = "POSITION_SAVED"
	EventPositionDeleted = "POSITION_DELETED"
	EventOptionSaved     = "OPTION_SAVED"
	EventOptionDeleted   = "OPTION_DELETED"
	EventQuoteUpdated    = "QUOTE_UPDATED"
	EventAlertChanged    = "ALERT_CHANGED"
)

// Command type constants accepted by the positions command consumer
const (
	CommandPositionUpsert    = "POSITION_UPSERT"
	CommandPositionDelete    = "POSITION_DELETE"
	CommandPositionsSnapshot = "POSITIONS_SNAPSHOT"
)

// PositionEvent represents a Kafka event for dashboard changes
type PositionEvent struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	Code           string          `json:"codigo"`
	Position       *Position       `json:"position,omitempty"`
	Option         *OptionPosition `json:"option,omitempty"`
	Quote          *QuoteSnapshot  `json:"quote,omitempty"`
	Classification string          `json:"classification,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// PositionCommand represents an inbound request to change a stored position.
// Prices are strings so producers may send either "32.50" or "32,50".
type PositionCommand struct {
	CommandType string `json:"command_type"`
	Source      string `json:"source"`
	Code        string `json:"codigo"`
	AvgPrice    string `json:"preco_medio"`
	TargetPrice string `json:"preco_teto"`

	Positions []PositionCommand `json:"positions,omitempty"`
}
