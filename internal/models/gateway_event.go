package models

import (
	"time"

	"github.com/google/uuid"
)

// GatewayEvent records every received webhook delivery. The unique provider
// event id makes gateway retries idempotent: a redelivered event inserts
// nothing and is acknowledged without reprocessing.
type GatewayEvent struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Provider        string    `gorm:"size:20;not null;uniqueIndex:idx_gateway_events_provider_event" json:"provider"`
	ProviderEventID string    `gorm:"size:255;not null;uniqueIndex:idx_gateway_events_provider_event" json:"provider_event_id"`
	EventType       string    `gorm:"size:100;not null" json:"event_type"`
	Processed       bool      `gorm:"default:false" json:"processed"`
	CreatedAt       time.Time `json:"created_at"`
}
