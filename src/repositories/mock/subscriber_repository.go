package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
)

// SubscriberRepository is an in-memory implementation of repositories.SubscriberRepository
type SubscriberRepository struct {
	ListActiveFunc func(ctx context.Context) ([]models.Subscriber, error)

	mu     sync.Mutex
	nextID int64
	subs   map[string]*models.Subscriber
}

// NewSubscriberRepository creates a new mock subscriber repository
func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{subs: make(map[string]*models.Subscriber)}
}

func (m *SubscriberRepository) Subscribe(_ context.Context, email string) (*models.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[email]
	if !ok {
		m.nextID++
		sub = &models.Subscriber{ID: m.nextID, Email: email, SubscribedAt: time.Now()}
		m.subs[email] = sub
	} else if sub.UnsubscribedAt != nil {
		sub.UnsubscribedAt = nil
		sub.SubscribedAt = time.Now()
	}
	out := *sub
	return &out, nil
}

func (m *SubscriberRepository) Unsubscribe(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[email]
	if !ok {
		return repositories.ErrNotFound
	}
	if sub.UnsubscribedAt == nil {
		now := time.Now()
		sub.UnsubscribedAt = &now
	}
	return nil
}

func (m *SubscriberRepository) List(_ context.Context) ([]models.Subscriber, error) {
	return m.filter(func(*models.Subscriber) bool { return true }), nil
}

func (m *SubscriberRepository) ListActive(ctx context.Context) ([]models.Subscriber, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return m.filter((*models.Subscriber).IsActive), nil
}

func (m *SubscriberRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, sub := range m.subs {
		if sub.ID == id {
			delete(m.subs, email)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *SubscriberRepository) filter(keep func(*models.Subscriber) bool) []models.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Subscriber{}
	for _, sub := range m.subs {
		if keep(sub) {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ repositories.SubscriberRepository = (*SubscriberRepository)(nil)
