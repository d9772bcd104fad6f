package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// smtpsPort is the implicit-TLS submission port; every other port negotiates STARTTLS
const smtpsPort = 465

// SMTPSettings is the SMTP account used for outgoing mail
type SMTPSettings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// ConnectivityProber verifies candidate credentials against the live third-party service
type ConnectivityProber interface {
	ProbeAPIKey(ctx context.Context, kind models.CredentialKind, apiKey string) error
	ProbeSMTP(ctx context.Context, settings SMTPSettings) error
}

// ProberConfig holds the probe endpoints and client timeout
type ProberConfig struct {
	CtrlPanelURL      string
	HetrixToolsAPIURL string
	Timeout           time.Duration
}

// Prober performs live HTTP and SMTP probes
type Prober struct {
	endpoints  map[models.CredentialKind]string
	httpClient *http.Client
	timeout    time.Duration
	dialSMTP   func(ctx context.Context, settings SMTPSettings, timeout time.Duration) error
}

// NewProber creates a prober with fixed per-kind probe endpoints
func NewProber(cfg ProberConfig) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HetrixToolsAPIURL == "" {
		cfg.HetrixToolsAPIURL = "https://api.hetrixtools.com"
	}

	return &Prober{
		endpoints: map[models.CredentialKind]string{
			models.KindCtrlPanel:   strings.TrimRight(cfg.CtrlPanelURL, "/") + "/api/users",
			models.KindHetrixTools: strings.TrimRight(cfg.HetrixToolsAPIURL, "/") + "/v3/uptime-monitors",
		},
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		timeout:  cfg.Timeout,
		dialSMTP: dialSMTP,
	}
}

// ProbeAPIKey issues an authenticated GET against the kind's probe endpoint.
// Only HTTP 200 is accepted; every other outcome is ErrInvalidCredential.
func (p *Prober) ProbeAPIKey(ctx context.Context, kind models.CredentialKind, apiKey string) error {
	endpoint, ok := p.endpoints[kind]
	if !ok {
		return ErrUnknownKind
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("kind", string(kind)).Msg("api key probe transport error")
		return fmt.Errorf("%w: %s probe failed", ErrInvalidCredential, kind)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("kind", string(kind)).Msg("api key probe rejected")
		return fmt.Errorf("%w: %s probe returned status %d", ErrInvalidCredential, kind, resp.StatusCode)
	}
	return nil
}

// ProbeSMTP connects and authenticates with the given account, then disconnects
func (p *Prober) ProbeSMTP(ctx context.Context, settings SMTPSettings) error {
	if err := p.dialSMTP(ctx, settings, p.timeout); err != nil {
		log.Debug().Err(err).Str("host", settings.Host).Int("port", settings.Port).Msg("smtp probe failed")
		return fmt.Errorf("%w: smtp authentication failed", ErrInvalidCredential)
	}
	return nil
}

// newSMTPClient builds a go-mail client; port 465 uses implicit TLS, others opportunistic STARTTLS
func newSMTPClient(settings SMTPSettings, timeout time.Duration) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(settings.Port),
		mail.WithTimeout(timeout),
	}
	if settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}
	if implicitTLS(settings.Port) {
		opts = append(opts, mail.WithSSL(), mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(settings.Host, opts...)
}

// implicitTLS reports whether the connection must be TLS from the first byte
func implicitTLS(port int) bool {
	return port == smtpsPort
}

func dialSMTP(ctx context.Context, settings SMTPSettings, timeout time.Duration) error {
	client, err := newSMTPClient(settings, timeout)
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return err
	}
	return client.Close()
}
