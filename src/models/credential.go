package models

import "time"

// CredentialRecord is the stored credential for one integration kind.
// Fields holds raw secret values and must never be serialized to clients.
type CredentialRecord struct {
	ID          int64             `json:"-"`
	Kind        CredentialKind    `json:"-"`
	Fields      map[string]string `json:"-"`
	IsActive    bool              `json:"-"`
	LastUpdated time.Time         `json:"-"`
}

// Get returns a field value or an empty string
func (r *CredentialRecord) Get(field string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[field]
}
