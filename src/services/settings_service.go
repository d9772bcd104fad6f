package services

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/rs/zerolog"
)

// requiredFields lists the fields a write must carry for each kind
var requiredFields = map[models.CredentialKind][]string{
	models.KindCtrlPanel:   {models.FieldAPIKey},
	models.KindHetrixTools: {models.FieldAPIKey},
	models.KindZohoMail: {
		models.FieldHost, models.FieldPort, models.FieldUsername,
		models.FieldPassword, models.FieldFromEmail,
	},
}

// optionalFields are persisted when present but never required
var optionalFields = map[models.CredentialKind][]string{
	models.KindZohoMail: {models.FieldFromName},
}

// mirrorKeys maps stored fields to the env keys they are mirrored under
var mirrorKeys = map[models.CredentialKind]map[string]string{
	models.KindCtrlPanel:   {models.FieldAPIKey: "CTRLPANEL_API_KEY"},
	models.KindHetrixTools: {models.FieldAPIKey: "HETRIXTOOLS_API_KEY"},
	models.KindZohoMail: {
		models.FieldHost:      "SMTP_HOST",
		models.FieldPort:      "SMTP_PORT",
		models.FieldUsername:  "SMTP_USER",
		models.FieldPassword:  "SMTP_PASS",
		models.FieldFromEmail: "SMTP_FROM_EMAIL",
		models.FieldFromName:  "SMTP_FROM_NAME",
	},
}

// CredentialView is the masked, client-safe rendering of a credential
type CredentialView struct {
	IsConfigured bool       `json:"isConfigured"`
	APIKey       string     `json:"apiKey,omitempty"`
	Host         string     `json:"host,omitempty"`
	Port         int        `json:"port,omitempty"`
	Username     string     `json:"username,omitempty"`
	Password     string     `json:"password,omitempty"`
	FromEmail    string     `json:"fromEmail,omitempty"`
	FromName     string     `json:"fromName,omitempty"`
	LastUpdated  *time.Time `json:"lastUpdated,omitempty"`
}

// SaveHook runs after a credential has been stored
type SaveHook func(ctx context.Context, record *models.CredentialRecord)

// SettingsService implements validate-before-persist, mask-on-read and the
// database plus env-file dual write for integration credentials.
type SettingsService struct {
	repo   repositories.CredentialRepository
	prober ConnectivityProber
	mirror *EnvMirror
	logger zerolog.Logger

	mu    sync.RWMutex
	hooks map[models.CredentialKind][]SaveHook
}

// NewSettingsService creates a settings service. mirror may be nil.
func NewSettingsService(repo repositories.CredentialRepository, prober ConnectivityProber, mirror *EnvMirror) *SettingsService {
	return &SettingsService{
		repo:   repo,
		prober: prober,
		mirror: mirror,
		logger: logging.NewLogger("settings"),
		hooks:  make(map[models.CredentialKind][]SaveHook),
	}
}

// OnSave registers a hook run after every successful write of kind
func (s *SettingsService) OnSave(kind models.CredentialKind, hook SaveHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[kind] = append(s.hooks[kind], hook)
}

// Read returns the masked view of the current credential for kind
func (s *SettingsService) Read(ctx context.Context, kind models.CredentialKind) (*CredentialView, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}

	rec, err := s.repo.GetCurrent(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s settings: %w", kind, err)
	}
	if rec == nil {
		return &CredentialView{IsConfigured: false}, nil
	}
	return newCredentialView(rec), nil
}

// Write validates, probes and stores fields for kind, then mirrors them into
// the env files. Nothing is persisted unless the probe succeeds. A mirror
// failure is logged and does not fail the write.
func (s *SettingsService) Write(ctx context.Context, kind models.CredentialKind, fields map[string]string) (*CredentialView, error) {
	clean, err := s.validateAndProbe(ctx, kind, fields)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Upsert(ctx, kind, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s settings: %w", kind, err)
	}

	if s.mirror != nil {
		if err := s.mirror.Set(mirrorValues(kind, clean)); err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to mirror settings to env file")
		}
	}

	s.mu.RLock()
	hooks := s.hooks[kind]
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, rec)
	}

	s.logger.Info().Str("kind", string(kind)).Msg("Settings updated")
	return newCredentialView(rec), nil
}

// TestConnection runs the same validation and probe as Write without persisting anything
func (s *SettingsService) TestConnection(ctx context.Context, kind models.CredentialKind, fields map[string]string) error {
	_, err := s.validateAndProbe(ctx, kind, fields)
	return err
}

// Reconcile rewrites env-file keys that drifted from the stored credentials
func (s *SettingsService) Reconcile(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}

	for _, kind := range models.CredentialKinds {
		rec, err := s.repo.GetCurrent(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to load %s settings: %w", kind, err)
		}
		if rec == nil {
			continue
		}

		changed, err := s.mirror.Sync(mirrorValues(kind, rec.Fields))
		if err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to reconcile env mirror")
		}
		if len(changed) > 0 {
			s.logger.Info().Str("kind", string(kind)).Strs("keys", changed).Msg("Env mirror reconciled")
		}
	}
	return nil
}

func (s *SettingsService) validateAndProbe(ctx context.Context, kind models.CredentialKind, fields map[string]string) (map[string]string, error) {
	clean, err := validateFields(kind, fields)
	if err != nil {
		return nil, err
	}

	if kind.IsSMTP() {
		settings, err := SMTPSettingsFromFields(clean)
		if err != nil {
			return nil, err
		}
		if err := s.prober.ProbeSMTP(ctx, *settings); err != nil {
			return nil, err
		}
		return clean, nil
	}

	if err := s.prober.ProbeAPIKey(ctx, kind, clean[models.FieldAPIKey]); err != nil {
		return nil, err
	}
	return clean, nil
}

// validateFields trims the known fields of kind and rejects missing or malformed ones
func validateFields(kind models.CredentialKind, fields map[string]string) (map[string]string, error) {
	required, ok := requiredFields[kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	clean := make(map[string]string, len(required))
	var missing []string
	for _, name := range required {
		v := strings.TrimSpace(fields[name])
		if v == "" {
			missing = append(missing, name)
			continue
		}
		clean[name] = v
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	for _, name := range optionalFields[kind] {
		clean[name] = strings.TrimSpace(fields[name])
	}

	if kind.IsSMTP() {
		if port, err := strconv.Atoi(clean[models.FieldPort]); err != nil || port < 1 || port > 65535 {
			return nil, &ValidationError{Fields: []string{models.FieldPort}, Reason: "port must be between 1 and 65535"}
		}
		if _, err := mail.ParseAddress(clean[models.FieldFromEmail]); err != nil {
			return nil, &ValidationError{Fields: []string{models.FieldFromEmail}, Reason: "invalid email address"}
		}
	}
	return clean, nil
}

// SMTPSettingsFromFields converts stored SMTP credential fields into settings
func SMTPSettingsFromFields(fields map[string]string) (*SMTPSettings, error) {
	port, err := strconv.Atoi(fields[models.FieldPort])
	if err != nil {
		return nil, &ValidationError{Fields: []string{models.FieldPort}, Reason: "port must be a number"}
	}
	return &SMTPSettings{
		Host:      fields[models.FieldHost],
		Port:      port,
		Username:  fields[models.FieldUsername],
		Password:  fields[models.FieldPassword],
		FromEmail: fields[models.FieldFromEmail],
		FromName:  fields[models.FieldFromName],
	}, nil
}

func mirrorValues(kind models.CredentialKind, fields map[string]string) map[string]string {
	keys := mirrorKeys[kind]
	out := make(map[string]string, len(keys))
	for field, envKey := range keys {
		if v, ok := fields[field]; ok {
			out[envKey] = v
		}
	}
	return out
}

// MirroredKeys returns the env keys written for kind, sorted
func MirroredKeys(kind models.CredentialKind) []string {
	keys := make([]string, 0, len(mirrorKeys[kind]))
	for _, k := range mirrorKeys[kind] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newCredentialView(rec *models.CredentialRecord) *CredentialView {
	updated := rec.LastUpdated
	view := &CredentialView{IsConfigured: true, LastUpdated: &updated}

	if rec.Kind.IsSMTP() {
		view.Host = rec.Get(models.FieldHost)
		view.Port, _ = strconv.Atoi(rec.Get(models.FieldPort))
		view.Username = rec.Get(models.FieldUsername)
		view.Password = MaskSecret(rec.Get(models.FieldPassword))
		view.FromEmail = rec.Get(models.FieldFromEmail)
		view.FromName = rec.Get(models.FieldFromName)
		return view
	}

	view.APIKey = MaskSecret(rec.Get(models.FieldAPIKey))
	return view
}
