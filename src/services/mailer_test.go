package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestMailer_NotConfigured(t *testing.T) {
	m := NewMailer(time.Second)

	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.Send(context.Background(), "a@example.com", "s", "b"), ErrMailerNotConfigured)
}

func TestMailer_SendUsesCurrentTransport(t *testing.T) {
	m := NewMailer(time.Second)

	var gotHost string
	var gotSubject []string
	m.deliver = func(ctx context.Context, s SMTPSettings, timeout time.Duration, msg *mail.Msg) error {
		gotHost = s.Host
		gotSubject = msg.GetGenHeader(mail.HeaderSubject)
		return nil
	}

	settings := &SMTPSettings{Host: "smtp.zoho.eu", Port: 465, FromEmail: "noreply@gamehost.example", FromName: "GameHost"}
	m.Configure(settings)
	settings.Host = "mutated.example" // Configure keeps its own copy

	require.NoError(t, m.Send(context.Background(), "player@example.com", "Welcome", "hello"))
	assert.Equal(t, "smtp.zoho.eu", gotHost)
	assert.Equal(t, []string{"Welcome"}, gotSubject)

	m.Configure(&SMTPSettings{Host: "smtp.zoho.com", Port: 587, FromEmail: "noreply@gamehost.example"})
	require.NoError(t, m.Send(context.Background(), "player@example.com", "Again", "hello"))
	assert.Equal(t, "smtp.zoho.com", gotHost)

	m.Configure(nil)
	assert.False(t, m.Configured())
}

func TestMailer_InvalidRecipient(t *testing.T) {
	m := NewMailer(time.Second)
	m.deliver = func(context.Context, SMTPSettings, time.Duration, *mail.Msg) error {
		t.Fatal("deliver must not be called")
		return nil
	}
	m.Configure(&SMTPSettings{Host: "smtp.zoho.eu", Port: 465, FromEmail: "noreply@gamehost.example"})

	assert.Error(t, m.Send(context.Background(), "not an address", "s", "b"))
}

func TestMailer_DeliveryError(t *testing.T) {
	m := NewMailer(time.Second)
	m.deliver = func(context.Context, SMTPSettings, time.Duration, *mail.Msg) error {
		return errors.New("connection refused")
	}
	m.Configure(&SMTPSettings{Host: "smtp.zoho.eu", Port: 465, FromEmail: "noreply@gamehost.example"})

	err := m.Send(context.Background(), "player@example.com", "s", "b")
	assert.ErrorContains(t, err, "connection refused")
}
