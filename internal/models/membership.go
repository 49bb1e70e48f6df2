package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MembershipStatusActive    = "active"
	MembershipStatusExpired   = "expired"
	MembershipStatusCancelled = "cancelled"
)

// Membership is the single entitlement ledger row per user. PlanType is the
// plan slug copied at activation, not a foreign key: the snapshot survives
// plan edits and deletion. Features and the AI quota are likewise copied at
// activation time and never re-joined against the live plan.
type Membership struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PlanType     string         `gorm:"size:100;not null" json:"plan_type"`
	Status       string         `gorm:"size:20;not null;default:'active'" json:"status"`
	Features     datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"features"`
	AIUsageLimit int            `gorm:"not null;default:0" json:"ai_usage_limit"` // -1 = unlimited
	AIUsageCount int            `gorm:"not null;default:0" json:"ai_usage_count"`
	ExpiryDate   *time.Time     `json:"expiry_date"` // nil = non-expiring
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsEntitled is the single authoritative entitlement check. Status is never
// eagerly flipped to expired by a background job; expiry is evaluated here,
// lazily, on every enforcement point.
func (m *Membership) IsEntitled(now time.Time) bool {
	if m == nil || m.Status != MembershipStatusActive {
		return false
	}
	return m.ExpiryDate == nil || m.ExpiryDate.After(now)
}

// HasAIQuota reports whether another AI query may be spent. A limit of -1
// means unlimited.
func (m *Membership) HasAIQuota() bool {
	if m.AIUsageLimit == -1 {
		return true
	}
	return m.AIUsageCount < m.AIUsageLimit
}

func (m *Membership) FeatureTitles() []string {
	if len(m.Features) == 0 {
		return nil
	}
	var titles []string
	if err := json.Unmarshal(m.Features, &titles); err != nil {
		return nil
	}
	return titles
}

func (m *Membership) SetFeatureTitles(titles []string) error {
	if titles == nil {
		titles = []string{}
	}
	b, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	m.Features = datatypes.JSON(b)
	return nil
}
