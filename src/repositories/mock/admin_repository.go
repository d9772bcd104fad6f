package mock

import (
	"context"
	"sync"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/google/uuid"
)

// AdminRepository is an in-memory implementation of repositories.AdminRepository
type AdminRepository struct {
	// Function stubs that can be overridden in tests
	CountFunc           func(ctx context.Context) (int, error)
	CreateFirstFunc     func(ctx context.Context, admin *models.AdminUser) error
	GetByEmailFunc      func(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateLastLoginFunc func(ctx context.Context, adminID uuid.UUID) error

	// Call tracking
	Calls map[string][]interface{}

	mu     sync.Mutex
	admins []*models.AdminUser
}

// NewAdminRepository creates a new mock admin repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *AdminRepository) track(name string, arg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name] = append(m.Calls[name], arg)
}

func (m *AdminRepository) Count(ctx context.Context) (int, error) {
	m.track("Count", nil)
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admins), nil
}

func (m *AdminRepository) CreateFirst(ctx context.Context, admin *models.AdminUser) error {
	m.track("CreateFirst", admin)
	if m.CreateFirstFunc != nil {
		return m.CreateFirstFunc(ctx, admin)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.admins) > 0 {
		return repositories.ErrAlreadyExists
	}
	stored := *admin
	m.admins = append(m.admins, &stored)
	return nil
}

func (m *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	m.track("GetByEmail", email)
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			found := *a
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *AdminRepository) UpdateLastLogin(ctx context.Context, adminID uuid.UUID) error {
	m.track("UpdateLastLogin", adminID)
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, adminID)
	}
	return nil
}

// Ensure AdminRepository implements the interface
var _ repositories.AdminRepository = (*AdminRepository)(nil)
