package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AdminService handles admin user operations
type AdminService struct {
	repo   repositories.AdminRepository
	logger zerolog.Logger
	cost   int
}

// NewAdminService creates a new admin service
func NewAdminService(repo repositories.AdminRepository) *AdminService {
	return &AdminService{
		repo:   repo,
		logger: logging.NewLogger("admin"),
		cost:   bcrypt.DefaultCost,
	}
}

// HasAdmins checks if any admin users exist
func (as *AdminService) HasAdmins(ctx context.Context) (bool, error) {
	count, err := as.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check admin users: %w", err)
	}
	return count > 0, nil
}

// RegisterFirstUser creates the initial admin. Once any admin exists every
// further call fails with ErrFirstUserExists, whatever its input, including
// concurrent ones that pass the count check together.
func (as *AdminService) RegisterFirstUser(ctx context.Context, email, username, password string) (*models.AdminUser, error) {
	// Closed registration wins over input validation
	hasAdmins, err := as.HasAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if hasAdmins {
		return nil, ErrFirstUserExists
	}

	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &ValidationError{Fields: []string{"email"}, Reason: "invalid email address"}
	}
	if len(username) > 255 {
		return nil, &ValidationError{Fields: []string{"username"}, Reason: "username must be at most 255 characters"}
	}
	if len(password) < minPasswordLength {
		return nil, &ValidationError{Fields: []string{"password"}, Reason: "password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := as.repo.CreateFirst(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, ErrFirstUserExists
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	as.logger.Info().Str("admin_id", admin.ID.String()).Str("username", admin.Username).Msg("First admin user registered")
	return admin, nil
}

// Authenticate verifies email and password and records the login time
func (as *AdminService) Authenticate(ctx context.Context, email, password string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &ValidationError{Fields: missingCredentialFields(email, password)}
	}

	admin, err := as.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := as.repo.UpdateLastLogin(ctx, admin.ID); err != nil {
		as.logger.Warn().Err(err).Str("admin_id", admin.ID.String()).Msg("Failed to update last_login")
	}
	admin.LastLogin = &now
	return admin, nil
}

// EnsureBootstrapAdmin creates the first admin from configuration when the
// table is empty. It is a no-op when any field is blank or an admin exists.
func (as *AdminService) EnsureBootstrapAdmin(ctx context.Context, email, username, password string) (bool, error) {
	if email == "" || username == "" || password == "" {
		return false, nil
	}

	_, err := as.RegisterFirstUser(ctx, email, username, password)
	if errors.Is(err, ErrFirstUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func missingCredentialFields(email, password string) []string {
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	return missing
}
