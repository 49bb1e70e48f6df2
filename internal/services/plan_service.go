package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codeversity/backend/internal/dto"
	"github.com/codeversity/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrSlugTaken    = errors.New("plan slug already in use")
	ErrInvalidPlan  = errors.New("invalid plan definition")
)

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// ListActive returns the public catalog, ordered by display rank.
func (s *PlanService) ListActive() ([]models.Plan, error) {
	var plans []models.Plan
	if err := s.db.Where("is_active = ?", true).
		Order("display_order ASC, created_at ASC").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch plans: %w", err)
	}
	return plans, nil
}

func (s *PlanService) ListAll(limit, offset int) ([]models.Plan, int64, error) {
	var plans []models.Plan
	var total int64

	s.db.Model(&models.Plan{}).Count(&total)
	if err := s.db.Order("display_order ASC, created_at ASC").
		Limit(limit).Offset(offset).Find(&plans).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch plans: %w", err)
	}
	return plans, total, nil
}

func (s *PlanService) GetByID(id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch plan: %w", err)
	}
	return &plan, nil
}

func (s *PlanService) GetBySlug(slug string) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch plan: %w", err)
	}
	return &plan, nil
}

func (s *PlanService) Create(req *dto.CreatePlanRequest) (*models.Plan, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Name == "" || slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", ErrInvalidPlan)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidPlan)
	}
	if !models.ValidDurationType(req.DurationType) {
		return nil, fmt.Errorf("%w: duration_type must be day, month, year or lifetime", ErrInvalidPlan)
	}
	if req.Duration <= 0 && req.DurationType != models.DurationLifetime {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidPlan)
	}
	if req.AIQueryLimit < -1 {
		return nil, fmt.Errorf("%w: ai_query_limit must be -1 or greater", ErrInvalidPlan)
	}

	var existing models.Plan
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, ErrSlugTaken
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	plan := models.Plan{
		ID:           uuid.New(),
		Name:         req.Name,
		Slug:         slug,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     currency,
		Duration:     req.Duration,
		DurationType: req.DurationType,
		AIQueryLimit: req.AIQueryLimit,
		IsPopular:    req.IsPopular,
		IsActive:     isActive,
		DisplayOrder: req.DisplayOrder,
	}
	if err := plan.SetFeatures(req.Features); err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}

	if err := s.db.Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &plan, nil
}

// Update edits a plan in place. Existing memberships are unaffected: they
// hold snapshots taken at activation time.
func (s *PlanService) Update(id uuid.UUID, req *dto.UpdatePlanRequest) (*models.Plan, error) {
	plan, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidPlan)
		}
		plan.Price = *req.Price
	}
	if req.Currency != nil {
		plan.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Duration != nil {
		plan.Duration = *req.Duration
	}
	if req.DurationType != nil {
		if !models.ValidDurationType(*req.DurationType) {
			return nil, fmt.Errorf("%w: duration_type must be day, month, year or lifetime", ErrInvalidPlan)
		}
		plan.DurationType = *req.DurationType
	}
	if req.Features != nil {
		if err := plan.SetFeatures(*req.Features); err != nil {
			return nil, fmt.Errorf("failed to encode features: %w", err)
		}
	}
	if req.AIQueryLimit != nil {
		if *req.AIQueryLimit < -1 {
			return nil, fmt.Errorf("%w: ai_query_limit must be -1 or greater", ErrInvalidPlan)
		}
		plan.AIQueryLimit = *req.AIQueryLimit
	}
	if req.IsPopular != nil {
		plan.IsPopular = *req.IsPopular
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		plan.DisplayOrder = *req.DisplayOrder
	}

	if err := s.db.Save(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return plan, nil
}

// Delete soft-deletes a plan. Memberships referencing its slug keep working;
// the slug is a snapshot, not a foreign key.
func (s *PlanService) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.Plan{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
