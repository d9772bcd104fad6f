package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/gamehost/siteadmin/src/templates"
	"github.com/rs/zerolog"
)

// SendResult summarizes a newsletter broadcast
type SendResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// NewsletterService manages subscriptions and broadcasts
type NewsletterService struct {
	repo   repositories.SubscriberRepository
	mailer *Mailer
	logger zerolog.Logger
}

// NewNewsletterService creates a new newsletter service
func NewNewsletterService(repo repositories.SubscriberRepository, mailer *Mailer) *NewsletterService {
	return &NewsletterService{
		repo:   repo,
		mailer: mailer,
		logger: logging.NewLogger("newsletter"),
	}
}

// Subscribe adds or reactivates a subscription
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.Subscribe(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe %s: %w", email, err)
	}
	return sub, nil
}

// Unsubscribe deactivates a subscription; unknown addresses are ErrNotFound
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.repo.Unsubscribe(ctx, email); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to unsubscribe %s: %w", email, err)
	}
	return nil
}

// List returns every subscriber
func (s *NewsletterService) List(ctx context.Context) ([]models.Subscriber, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, nil
}

// Delete removes a subscriber by id
func (s *NewsletterService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete subscriber %d: %w", id, err)
	}
	return nil
}

// Send mails subject and body, with the unsubscribe footer, to every active
// subscriber one at a time.
// Individual delivery failures are counted and logged, not returned.
func (s *NewsletterService) Send(ctx context.Context, subject, body string) (*SendResult, error) {
	subject = strings.TrimSpace(subject)
	var missing []string
	if subject == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if !s.mailer.Configured() {
		return nil, ErrMailerNotConfigured
	}

	subs, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}

	result := &SendResult{}
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		text, err := templates.RenderNewsletterText(body, sub.Email)
		if err != nil {
			return result, err
		}
		if err := s.mailer.Send(ctx, sub.Email, subject, text); err != nil {
			result.Failed++
			s.logger.Warn().Err(err).Int64("subscriber_id", sub.ID).Msg("Newsletter delivery failed")
			continue
		}
		result.Sent++
	}

	s.logger.Info().Int("sent", result.Sent).Int("failed", result.Failed).Msg("Newsletter sent")
	return result, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", &ValidationError{Fields: []string{"email"}}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", &ValidationError{Fields: []string{"email"}, Reason: "invalid email address"}
	}
	return email, nil
}
