package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// AdminRepository stores admin identities in admin_users
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

var _ repositories.AdminRepository = (*AdminRepository)(nil)

// Count returns the number of admin identities
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM admin_users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return count, nil
}

// CreateFirst inserts the admin only while no identity exists.
// The advisory lock serializes concurrent bootstrap attempts.
func (r *AdminRepository) CreateFirst(ctx context.Context, admin *models.AdminUser) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext('admin_users_first_run'))"); err != nil {
		return fmt.Errorf("failed to lock admin bootstrap: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO admin_users (id, username, email, password_hash, created_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (SELECT 1 FROM admin_users)
	`, admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repositories.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert admin user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrAlreadyExists
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByEmail loads an admin by login email
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, last_login
		FROM admin_users
		WHERE email = $1
	`, email).Scan(&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash, &admin.CreatedAt, &admin.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load admin user: %w", err)
	}
	return admin, nil
}

// UpdateLastLogin stamps the admin's last successful login
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, adminID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE admin_users SET last_login = $1 WHERE id = $2", time.Now(), adminID)
	if err != nil {
		return fmt.Errorf("failed to update last_login: %w", err)
	}
	return nil
}
