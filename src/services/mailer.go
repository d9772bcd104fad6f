package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wneessen/go-mail"
)

// MailSender sends a single plain-text message
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer is the process-wide mail transport. It is built from the stored SMTP
// credential at startup and replaced wholesale whenever new SMTP settings are saved.
type Mailer struct {
	settings atomic.Pointer[SMTPSettings]
	timeout  time.Duration
	deliver  func(ctx context.Context, settings SMTPSettings, timeout time.Duration, msg *mail.Msg) error
}

// NewMailer creates an unconfigured mailer
func NewMailer(timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Mailer{timeout: timeout, deliver: deliverSMTP}
}

// Configure swaps in a new transport; nil disables sending
func (m *Mailer) Configure(settings *SMTPSettings) {
	if settings == nil {
		m.settings.Store(nil)
		return
	}
	copied := *settings
	m.settings.Store(&copied)
}

// Configured reports whether a transport is available
func (m *Mailer) Configured() bool {
	return m.settings.Load() != nil
}

// Send delivers one message through the current transport
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	settings := m.settings.Load()
	if settings == nil {
		return ErrMailerNotConfigured
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(settings.FromName, settings.FromEmail); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.deliver(ctx, *settings, m.timeout, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func deliverSMTP(ctx context.Context, settings SMTPSettings, timeout time.Duration, msg *mail.Msg) error {
	client, err := newSMTPClient(settings, timeout)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
