package dto

import (
	"time"

	"github.com/codeversity/backend/internal/models"
)

type MembershipResponse struct {
	PlanType     string     `json:"plan_type"`
	Status       string     `json:"status"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Features     []string   `json:"features"`
	AIUsageLimit int        `json:"ai_usage_limit"`
	AIUsageCount int        `json:"ai_usage_count"`
	Entitled     bool       `json:"entitled"`
}

func NewMembershipResponse(m *models.Membership) MembershipResponse {
	features := m.FeatureTitles()
	if features == nil {
		features = []string{}
	}
	return MembershipResponse{
		PlanType:     m.PlanType,
		Status:       m.Status,
		ExpiryDate:   m.ExpiryDate,
		Features:     features,
		AIUsageLimit: m.AIUsageLimit,
		AIUsageCount: m.AIUsageCount,
		Entitled:     m.IsEntitled(time.Now()),
	}
}

// UpgradeRequest is the direct activation path for free plans. Duration is
// accepted for backward compatibility but the plan's own terms win.
type UpgradeRequest struct {
	PlanType string `json:"plan_type"`
	Duration int    `json:"duration,omitempty"`
}
