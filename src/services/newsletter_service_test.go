package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func newTestNewsletter(t *testing.T) (*NewsletterService, *mock.SubscriberRepository, *Mailer, *[]string) {
	t.Helper()
	repo := mock.NewSubscriberRepository()
	mailer := NewMailer(time.Second)
	var delivered []string
	mailer.deliver = func(_ context.Context, _ SMTPSettings, _ time.Duration, msg *mail.Msg) error {
		to := msg.GetToString()
		if len(to) > 0 && to[0] == "<bounce@example.com>" {
			return errors.New("550 mailbox unavailable")
		}
		delivered = append(delivered, to...)
		return nil
	}
	return NewNewsletterService(repo, mailer), repo, mailer, &delivered
}

func TestNewsletter_SubscribeIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)
	ctx := context.Background()

	first, err := svc.Subscribe(ctx, "Player@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", first.Email)

	again, err := svc.Subscribe(ctx, "player@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	subs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestNewsletter_SubscribeValidation(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)

	_, err := svc.Subscribe(context.Background(), "")
	assert.True(t, IsValidation(err))
	_, err = svc.Subscribe(context.Background(), "nope")
	assert.True(t, IsValidation(err))
}

func TestNewsletter_UnsubscribeUnknown(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)

	err := svc.Unsubscribe(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewsletter_ResubscribeAfterUnsubscribe(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, "player@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(ctx, "player@example.com"))

	subs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].IsActive())

	sub, err := svc.Subscribe(ctx, "player@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsActive())
}

func TestNewsletter_Delete(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, "player@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sub.ID))
	assert.ErrorIs(t, svc.Delete(ctx, sub.ID), ErrNotFound)
}

func TestNewsletter_SendRequiresMailer(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)

	_, err := svc.Send(context.Background(), "Patch notes", "New servers online")
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestNewsletter_SendCountsFailures(t *testing.T) {
	svc, _, mailer, delivered := newTestNewsletter(t)
	ctx := context.Background()
	mailer.Configure(&SMTPSettings{Host: "smtp.zoho.eu", Port: 465, FromEmail: "news@gamehost.example"})

	for _, email := range []string{"a@example.com", "bounce@example.com", "b@example.com", "gone@example.com"} {
		_, err := svc.Subscribe(ctx, email)
		require.NoError(t, err)
	}
	require.NoError(t, svc.Unsubscribe(ctx, "gone@example.com"))

	result, err := svc.Send(ctx, "Patch notes", "New servers online")
	require.NoError(t, err)
	assert.Equal(t, &SendResult{Sent: 2, Failed: 1}, result)
	assert.ElementsMatch(t, []string{"<a@example.com>", "<b@example.com>"}, *delivered)
}

func TestNewsletter_SendValidation(t *testing.T) {
	svc, _, _, _ := newTestNewsletter(t)

	_, err := svc.Send(context.Background(), " ", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"subject", "body"}, ve.Fields)
}

func TestNewsletter_SendListFailure(t *testing.T) {
	svc, repo, mailer, _ := newTestNewsletter(t)
	mailer.Configure(&SMTPSettings{Host: "smtp.zoho.eu", Port: 465, FromEmail: "news@gamehost.example"})
	repo.ListActiveFunc = func(context.Context) ([]models.Subscriber, error) {
		return nil, errors.New("db down")
	}

	_, err := svc.Send(context.Background(), "s", "b")
	assert.ErrorContains(t, err, "db down")
}
