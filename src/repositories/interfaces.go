package repositories

import (
	"context"
	"errors"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a row addressed by id or unique key does not exist
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when a guarded insert found a conflicting row
var ErrAlreadyExists = errors.New("record already exists")

// AdminRepository defines the interface for admin data access
type AdminRepository interface {
	Count(ctx context.Context) (int, error)
	// CreateFirst inserts admin only while the table is empty; otherwise ErrAlreadyExists
	CreateFirst(ctx context.Context, admin *models.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, adminID uuid.UUID) error
}

// CredentialRepository defines the interface for integration credential storage.
// GetCurrent returns (nil, nil) when the kind is not configured.
type CredentialRepository interface {
	GetCurrent(ctx context.Context, kind models.CredentialKind) (*models.CredentialRecord, error)
	Upsert(ctx context.Context, kind models.CredentialKind, fields map[string]string) (*models.CredentialRecord, error)
}

// SubscriberRepository defines the interface for newsletter subscribers
type SubscriberRepository interface {
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context) ([]models.Subscriber, error)
	ListActive(ctx context.Context) ([]models.Subscriber, error)
	Delete(ctx context.Context, id int64) error
}

// PlanRepository defines the interface for the plan catalog
type PlanRepository interface {
	Count(ctx context.Context) (int, error)
	ListActive(ctx context.Context) ([]models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id int64) error
}
