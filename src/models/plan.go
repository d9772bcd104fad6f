package models

import "time"

// Plan is a hosting plan shown on the pricing pages
type Plan struct {
	ID            int64     `json:"id" yaml:"-"`
	Slug          string    `json:"slug" yaml:"slug"`
	Name          string    `json:"name" yaml:"name"`
	Category      string    `json:"category" yaml:"category"`
	PriceCents    int       `json:"price_cents" yaml:"price_cents"`
	BillingPeriod string    `json:"billing_period" yaml:"billing_period"`
	Features      []string  `json:"features" yaml:"features"`
	Position      int       `json:"position" yaml:"position"`
	IsActive      bool      `json:"is_active" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}
