package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAdminService() (*AdminService, *mock.AdminRepository) {
	repo := mock.NewAdminRepository()
	svc := NewAdminService(repo)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestRegisterFirstUser(t *testing.T) {
	svc, _ := newTestAdminService()
	ctx := context.Background()

	has, err := svc.HasAdmins(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	admin, err := svc.RegisterFirstUser(ctx, " Owner@GameHost.example ", "owner", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@gamehost.example", admin.Email)
	assert.NotEqual(t, "correct-horse", admin.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("correct-horse")))

	has, err = svc.HasAdmins(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = svc.RegisterFirstUser(ctx, "second@gamehost.example", "second", "another-pass")
	assert.ErrorIs(t, err, ErrFirstUserExists)
}

func TestRegisterFirstUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		password string
		field    string
	}{
		{"missing email", "", "owner", "password123", "email"},
		{"missing username", "owner@gamehost.example", " ", "password123", "username"},
		{"invalid email", "owner-at-gamehost", "owner", "password123", "email"},
		{"short password", "owner@gamehost.example", "owner", "short", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestAdminService()
			_, err := svc.RegisterFirstUser(context.Background(), tt.email, tt.username, tt.password)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			assert.Empty(t, repo.Calls["CreateFirst"], "no side effect on invalid input")
		})
	}
}

func TestRegisterFirstUser_ClosedBeforeValidation(t *testing.T) {
	svc, repo := newTestAdminService()
	ctx := context.Background()

	_, err := svc.RegisterFirstUser(ctx, "owner@gamehost.example", "owner", "correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"short password", "x@y.z", "x", "short"},
		{"invalid email", "not-an-email", "x", "password123"},
		{"all blank", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterFirstUser(ctx, tt.email, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrFirstUserExists)
		})
	}
	assert.Len(t, repo.Calls["CreateFirst"], 1)
}

func TestRegisterFirstUser_CountFault(t *testing.T) {
	svc, repo := newTestAdminService()
	repo.CountFunc = func(context.Context) (int, error) {
		return 0, errors.New("connection reset")
	}

	_, err := svc.RegisterFirstUser(context.Background(), "owner@gamehost.example", "owner", "correct-horse")
	require.ErrorContains(t, err, "connection reset")
	assert.Empty(t, repo.Calls["CreateFirst"])
}

func TestRegisterFirstUser_ConcurrentCallersOnlyOneWins(t *testing.T) {
	svc, _ := newTestAdminService()

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegisterFirstUser(context.Background(), "owner@gamehost.example", "owner", "correct-horse")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, exists int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrFirstUserExists):
			exists++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, exists)
}

func TestRegisterFirstUser_StorageFault(t *testing.T) {
	svc, repo := newTestAdminService()
	repo.CreateFirstFunc = func(context.Context, *models.AdminUser) error {
		return errors.New("connection reset")
	}

	_, err := svc.RegisterFirstUser(context.Background(), "owner@gamehost.example", "owner", "correct-horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFirstUserExists)
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestAdminService()
	ctx := context.Background()
	_, err := svc.RegisterFirstUser(ctx, "owner@gamehost.example", "owner", "correct-horse")
	require.NoError(t, err)

	admin, err := svc.Authenticate(ctx, "OWNER@gamehost.example", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "owner", admin.Username)
	assert.NotNil(t, admin.LastLogin)
	assert.Len(t, repo.Calls["UpdateLastLogin"], 1)

	_, err = svc.Authenticate(ctx, "owner@gamehost.example", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@gamehost.example", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "", "")
	assert.True(t, IsValidation(err))
}

func TestAuthenticate_LastLoginFailureIsNotFatal(t *testing.T) {
	svc, repo := newTestAdminService()
	ctx := context.Background()
	_, err := svc.RegisterFirstUser(ctx, "owner@gamehost.example", "owner", "correct-horse")
	require.NoError(t, err)
	repo.UpdateLastLoginFunc = func(context.Context, uuid.UUID) error {
		return errors.New("read-only transaction")
	}

	_, err = svc.Authenticate(ctx, "owner@gamehost.example", "correct-horse")
	assert.NoError(t, err)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, _ := newTestAdminService()
	ctx := context.Background()

	created, err := svc.EnsureBootstrapAdmin(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureBootstrapAdmin(ctx, "owner@gamehost.example", "owner", "correct-horse")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureBootstrapAdmin(ctx, "owner@gamehost.example", "owner", "correct-horse")
	require.NoError(t, err)
	assert.False(t, created)
}
