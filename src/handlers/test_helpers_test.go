package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gamehost/siteadmin/src/middleware"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories/mock"
	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	validAPIKey   = "ctrl-1234567890-key"
	validSMTPPass = "smtp-app-password"
	testJWTSecret = "handler-tests-secret-0123456789abcdef"
)

// stubProber accepts a single API key and SMTP password
type stubProber struct{}

func (stubProber) ProbeAPIKey(_ context.Context, kind models.CredentialKind, apiKey string) error {
	if apiKey != validAPIKey {
		return fmt.Errorf("%w: %s probe returned status 401", services.ErrInvalidCredential, kind)
	}
	return nil
}

func (stubProber) ProbeSMTP(_ context.Context, s services.SMTPSettings) error {
	if s.Password != validSMTPPass {
		return fmt.Errorf("%w: smtp authentication failed", services.ErrInvalidCredential)
	}
	return nil
}

// stubHealth reports a fixed health result
type stubHealth struct{ err error }

func (s stubHealth) Health(context.Context) error { return s.err }

// testServer is the full router wired to in-memory repositories
type testServer struct {
	router      *gin.Engine
	jwt         *middleware.JWTManager
	admins      *mock.AdminRepository
	credentials *mock.CredentialRepository
	subscribers *mock.SubscriberRepository
	plans       *mock.PlanRepository
	mailer      *services.Mailer
	envPath     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager, err := middleware.NewJWTManager(testJWTSecret)
	require.NoError(t, err)

	ts := &testServer{
		jwt:         jwtManager,
		admins:      mock.NewAdminRepository(),
		credentials: mock.NewCredentialRepository(),
		subscribers: mock.NewSubscriberRepository(),
		plans:       mock.NewPlanRepository(),
		mailer:      services.NewMailer(time.Second),
		envPath:     filepath.Join(t.TempDir(), ".env"),
	}

	settings := services.NewSettingsService(ts.credentials, stubProber{}, services.NewEnvMirror(ts.envPath))
	settings.OnSave(models.KindZohoMail, func(_ context.Context, rec *models.CredentialRecord) {
		if smtp, err := services.SMTPSettingsFromFields(rec.Fields); err == nil {
			ts.mailer.Configure(smtp)
		}
	})

	ts.router = gin.New()
	ts.router.Use(middleware.RequestIDMiddleware())
	SetupRoutes(ts.router, Routes{
		Health:     NewHealthHandler(stubHealth{}, "test"),
		Admin:      NewAdminHandler(services.NewAdminService(ts.admins), jwtManager, false),
		Settings:   NewSettingsHandler(settings),
		Newsletter: NewNewsletterHandler(services.NewNewsletterService(ts.subscribers, ts.mailer)),
		Plans:      NewPlanHandler(services.NewPlanService(ts.plans)),
		AdminAuth:  middleware.AdminAuthMiddleware(jwtManager),
	})
	return ts
}

// token returns a valid session token for a fixed admin identity
func (ts *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := ts.jwt.Generate(models.AdminIdentity{
		ID:       "0b4f6c1e-6a3e-4d5b-9c3e-1f2a3b4c5d6e",
		Username: "owner",
		Email:    "owner@gamehost.example",
	})
	require.NoError(t, err)
	return token
}

// do sends a JSON request; an empty token sends no Authorization header
func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// decode parses a JSON object response body
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

// assertStatusCode checks if response status code matches expected
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expectedCode int) {
	t.Helper()
	if w.Code != expectedCode {
		t.Errorf("expected status %d, got %d: %s", expectedCode, w.Code, w.Body.String())
	}
}

// assertJSONError checks if response contains expected error message
func assertJSONError(t *testing.T, w *httptest.ResponseRecorder, expectedError string) {
	t.Helper()
	if got := decode(t, w)["error"]; got != expectedError {
		t.Errorf("expected error '%s', got '%v'", expectedError, got)
	}
}
