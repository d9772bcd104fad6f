package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
)

// PlanRepository is an in-memory implementation of repositories.PlanRepository
type PlanRepository struct {
	CountFunc func(ctx context.Context) (int, error)

	mu     sync.Mutex
	nextID int64
	plans  map[int64]models.Plan
}

// NewPlanRepository creates a new mock plan repository
func NewPlanRepository() *PlanRepository {
	return &PlanRepository{plans: make(map[int64]models.Plan)}
}

func (m *PlanRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plans), nil
}

func (m *PlanRepository) ListActive(_ context.Context) ([]models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Plan{}
	for _, p := range m.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *PlanRepository) Create(_ context.Context, plan *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.Slug == plan.Slug {
			return repositories.ErrAlreadyExists
		}
	}
	m.nextID++
	plan.ID = m.nextID
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	m.plans[plan.ID] = *plan
	return nil
}

func (m *PlanRepository) Update(_ context.Context, plan *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.plans[plan.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	plan.CreatedAt = existing.CreatedAt
	plan.UpdatedAt = time.Now()
	m.plans[plan.ID] = *plan
	return nil
}

func (m *PlanRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.plans, id)
	return nil
}

var _ repositories.PlanRepository = (*PlanRepository)(nil)
