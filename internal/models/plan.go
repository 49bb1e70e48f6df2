package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DurationDay      = "day"
	DurationMonth    = "month"
	DurationYear     = "year"
	DurationLifetime = "lifetime"
)

// PlanFeature is one line of a plan's feature matrix. Excluded features are
// kept so the pricing page can render them struck through.
type PlanFeature struct {
	Title    string `json:"title"`
	Included bool   `json:"included"`
}

// Plan is an admin-defined subscription tier. Memberships and payments never
// embed it; they snapshot what they need so price/feature edits don't rewrite
// history.
type Plan struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string         `gorm:"not null;size:100" json:"name"`
	Slug         string         `gorm:"not null;size:100;uniqueIndex" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	Price        float64        `gorm:"not null;default:0" json:"price"`
	Currency     string         `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Duration     int            `gorm:"not null;default:1" json:"duration"`
	DurationType string         `gorm:"size:20;not null;default:'month'" json:"duration_type"`
	Features     datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"features"`
	AIQueryLimit int            `gorm:"not null;default:0" json:"ai_query_limit"` // -1 = unlimited
	IsPopular    bool           `gorm:"default:false" json:"is_popular"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsFree reports whether selecting this plan bypasses the payment gateway
// entirely.
func (p *Plan) IsFree() bool {
	return p.Price == 0
}

func (p *Plan) FeatureList() ([]PlanFeature, error) {
	if len(p.Features) == 0 {
		return nil, nil
	}
	var features []PlanFeature
	if err := json.Unmarshal(p.Features, &features); err != nil {
		return nil, err
	}
	return features, nil
}

func (p *Plan) SetFeatures(features []PlanFeature) error {
	b, err := json.Marshal(features)
	if err != nil {
		return err
	}
	p.Features = datatypes.JSON(b)
	return nil
}

// IncludedFeatureTitles returns the titles snapshotted onto a membership at
// activation time.
func (p *Plan) IncludedFeatureTitles() []string {
	features, err := p.FeatureList()
	if err != nil {
		return nil
	}
	titles := make([]string, 0, len(features))
	for _, f := range features {
		if f.Included {
			titles = append(titles, f.Title)
		}
	}
	return titles
}

func ValidDurationType(t string) bool {
	switch t {
	case DurationDay, DurationMonth, DurationYear, DurationLifetime:
		return true
	default:
		return false
	}
}
