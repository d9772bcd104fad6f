package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepository stores the hosting plan catalog
type PlanRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

var _ repositories.PlanRepository = (*PlanRepository)(nil)

// Count returns the number of plans, active or not
func (r *PlanRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM plans").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return count, nil
}

// ListActive returns visible plans grouped by category
func (r *PlanRepository) ListActive(ctx context.Context) ([]models.Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, slug, name, category, price_cents, billing_period, features, position, is_active, created_at, updated_at
		FROM plans
		WHERE is_active = true
		ORDER BY category, position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	plans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Plan, error) {
		var p models.Plan
		err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Category, &p.PriceCents, &p.BillingPeriod,
			&p.Features, &p.Position, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan plans: %w", err)
	}
	return plans, nil
}

// Create inserts a plan and fills its generated columns
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO plans (slug, name, category, price_cents, billing_period, features, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, plan.Slug, plan.Name, plan.Category, plan.PriceCents, plan.BillingPeriod,
		features(plan.Features), plan.Position, plan.IsActive,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return wrapPlanError("create", err)
	}
	return nil
}

// Update overwrites a plan by id
func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE plans
		SET slug = $2, name = $3, category = $4, price_cents = $5, billing_period = $6,
		    features = $7, position = $8, is_active = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, plan.ID, plan.Slug, plan.Name, plan.Category, plan.PriceCents, plan.BillingPeriod,
		features(plan.Features), plan.Position, plan.IsActive,
	).Scan(&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repositories.ErrNotFound
		}
		return wrapPlanError("update", err)
	}
	return nil
}

// Delete removes a plan by id
func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM plans WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func features(f []string) []string {
	if f == nil {
		return []string{}
	}
	return f
}

func wrapPlanError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return repositories.ErrAlreadyExists
	}
	return fmt.Errorf("failed to %s plan: %w", op, err)
}
