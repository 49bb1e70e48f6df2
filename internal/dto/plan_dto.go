package dto

import "github.com/codeversity/backend/internal/models"

type CreatePlanRequest struct {
	Name         string               `json:"name"`
	Slug         string               `json:"slug"`
	Description  string               `json:"description"`
	Price        float64              `json:"price"`
	Currency     string               `json:"currency"`
	Duration     int                  `json:"duration"`
	DurationType string               `json:"duration_type"`
	Features     []models.PlanFeature `json:"features"`
	AIQueryLimit int                  `json:"ai_query_limit"`
	IsPopular    bool                 `json:"is_popular"`
	IsActive     *bool                `json:"is_active"`
	DisplayOrder int                  `json:"display_order"`
}

// UpdatePlanRequest uses pointers so omitted fields are left untouched.
type UpdatePlanRequest struct {
	Name         *string               `json:"name"`
	Description  *string               `json:"description"`
	Price        *float64              `json:"price"`
	Currency     *string               `json:"currency"`
	Duration     *int                  `json:"duration"`
	DurationType *string               `json:"duration_type"`
	Features     *[]models.PlanFeature `json:"features"`
	AIQueryLimit *int                  `json:"ai_query_limit"`
	IsPopular    *bool                 `json:"is_popular"`
	IsActive     *bool                 `json:"is_active"`
	DisplayOrder *int                  `json:"display_order"`
}
