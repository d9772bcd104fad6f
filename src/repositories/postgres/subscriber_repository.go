package postgres

import (
	"context"
	"fmt"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriberRepository stores newsletter subscriptions
type SubscriberRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriberRepository creates a new subscriber repository
func NewSubscriberRepository(pool *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{pool: pool}
}

var _ repositories.SubscriberRepository = (*SubscriberRepository)(nil)

const subscriberColumns = "id, email, subscribed_at, unsubscribed_at"

// Subscribe adds email or reactivates a previous subscription
func (r *SubscriberRepository) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO newsletter_subscribers (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE
		SET unsubscribed_at = NULL,
		    subscribed_at = CASE WHEN newsletter_subscribers.unsubscribed_at IS NULL
		                         THEN newsletter_subscribers.subscribed_at ELSE NOW() END
		RETURNING `+subscriberColumns,
		email,
	).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.UnsubscribedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return sub, nil
}

// Unsubscribe marks the subscription inactive
func (r *SubscriberRepository) Unsubscribe(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE newsletter_subscribers
		SET unsubscribed_at = COALESCE(unsubscribed_at, NOW())
		WHERE email = $1
	`, email)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// List returns every subscriber, newest first
func (r *SubscriberRepository) List(ctx context.Context) ([]models.Subscriber, error) {
	return r.query(ctx, "SELECT "+subscriberColumns+" FROM newsletter_subscribers ORDER BY subscribed_at DESC, id DESC")
}

// ListActive returns subscribers that still receive newsletters
func (r *SubscriberRepository) ListActive(ctx context.Context) ([]models.Subscriber, error) {
	return r.query(ctx, "SELECT "+subscriberColumns+" FROM newsletter_subscribers WHERE unsubscribed_at IS NULL ORDER BY id")
}

// Delete removes a subscriber by id
func (r *SubscriberRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM newsletter_subscribers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepository) query(ctx context.Context, sql string) ([]models.Subscriber, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subscriber, error) {
		var s models.Subscriber
		err := row.Scan(&s.ID, &s.Email, &s.SubscribedAt, &s.UnsubscribedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscribers: %w", err)
	}
	return subs, nil
}
