package models

import "time"

// Event types
const (
	EventTypeBundleAdded    = "BUNDLE_ADDED"
	EventTypeBundleRejected = "BUNDLE_REJECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BundleLineData represents one hydrated bundle line in events
type BundleLineData struct {
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id"`
	Quantity    int   `json:"quantity"`
	IsBox       bool  `json:"is_box"`
}

// BundleAddedEvent published when a bundle lands in the cart as a whole
type BundleAddedEvent struct {
	BaseEvent
	SessionID string           `json:"session_id"`
	ItemCount int              `json:"item_count"`
	Lines     []BundleLineData `json:"lines"`
}

// BundleRejectedEvent published when a submission is rejected
type BundleRejectedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

// ProcessedEvent for worker idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
