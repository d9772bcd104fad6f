package models

import "time"

// Subscriber is a newsletter subscription
type Subscriber struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

// IsActive returns true if the subscriber still receives newsletters
func (s *Subscriber) IsActive() bool {
	return s.UnsubscribedAt == nil
}
