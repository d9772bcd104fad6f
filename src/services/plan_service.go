package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// planSeedFile is the on-disk format of the initial plan catalog
type planSeedFile struct {
	Plans []planSeed `yaml:"plans"`
}

// planSeed defaults is_active to true when omitted
type planSeed struct {
	models.Plan `yaml:",inline"`
	Active      *bool `yaml:"is_active"`
}

// PlanService manages the hosting plan catalog
type PlanService struct {
	repo   repositories.PlanRepository
	logger zerolog.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(repo repositories.PlanRepository) *PlanService {
	return &PlanService{repo: repo, logger: logging.NewLogger("plans")}
}

// ListActive returns the public catalog ordered by category and position
func (s *PlanService) ListActive(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// Create adds a plan to the catalog
func (s *PlanService) Create(ctx context.Context, plan *models.Plan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return fmt.Errorf("plan %q: %w", plan.Slug, ErrConflict)
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// Update replaces the plan with plan.ID
func (s *PlanService) Update(ctx context.Context, plan *models.Plan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, plan); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repositories.ErrAlreadyExists):
			return fmt.Errorf("plan %q: %w", plan.Slug, ErrConflict)
		}
		return fmt.Errorf("failed to update plan %d: %w", plan.ID, err)
	}
	return nil
}

// Delete removes a plan by id
func (s *PlanService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete plan %d: %w", id, err)
	}
	return nil
}

// SeedFromFile loads the YAML catalog at path into an empty plans table.
// It returns the number of plans inserted; a missing file inserts nothing.
func (s *PlanService) SeedFromFile(ctx context.Context, path string) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info().Str("path", path).Msg("Plan seed file not found, skipping")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read plan seed file: %w", err)
	}

	plans, err := parsePlanSeed(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	for i := range plans {
		if err := s.Create(ctx, &plans[i]); err != nil {
			return i, fmt.Errorf("failed to seed plan %q: %w", plans[i].Slug, err)
		}
	}

	s.logger.Info().Int("count", len(plans)).Str("path", path).Msg("Plan catalog seeded")
	return len(plans), nil
}

func parsePlanSeed(data []byte) ([]models.Plan, error) {
	var file planSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid plan seed: %w", err)
	}

	plans := make([]models.Plan, 0, len(file.Plans))
	for i, seed := range file.Plans {
		plan := seed.Plan
		plan.IsActive = seed.Active == nil || *seed.Active
		if plan.Position == 0 {
			plan.Position = i + 1
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func validatePlan(plan *models.Plan) error {
	plan.Slug = strings.TrimSpace(plan.Slug)
	plan.Name = strings.TrimSpace(plan.Name)
	plan.Category = strings.TrimSpace(plan.Category)
	if plan.BillingPeriod == "" {
		plan.BillingPeriod = "monthly"
	}
	if plan.Features == nil {
		plan.Features = []string{}
	}

	var missing []string
	if plan.Slug == "" {
		missing = append(missing, "slug")
	}
	if plan.Name == "" {
		missing = append(missing, "name")
	}
	if plan.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if !slugPattern.MatchString(plan.Slug) {
		return &ValidationError{Fields: []string{"slug"}, Reason: "slug must be lowercase letters, digits and dashes"}
	}
	if plan.PriceCents < 0 {
		return &ValidationError{Fields: []string{"price_cents"}, Reason: "price must not be negative"}
	}
	return nil
}
