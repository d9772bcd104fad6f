package mock

import (
	"context"
	"sync"
	"time"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
)

// CredentialRepository is an in-memory implementation of repositories.CredentialRepository
type CredentialRepository struct {
	GetCurrentFunc func(ctx context.Context, kind models.CredentialKind) (*models.CredentialRecord, error)
	UpsertFunc     func(ctx context.Context, kind models.CredentialKind, fields map[string]string) (*models.CredentialRecord, error)

	Calls map[string][]interface{}

	mu      sync.Mutex
	nextID  int64
	records map[models.CredentialKind]*models.CredentialRecord
}

// NewCredentialRepository creates a new mock credential repository
func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{
		Calls:   make(map[string][]interface{}),
		records: make(map[models.CredentialKind]*models.CredentialRecord),
	}
}

func (m *CredentialRepository) GetCurrent(ctx context.Context, kind models.CredentialKind) (*models.CredentialRecord, error) {
	m.mu.Lock()
	m.Calls["GetCurrent"] = append(m.Calls["GetCurrent"], kind)
	m.mu.Unlock()
	if m.GetCurrentFunc != nil {
		return m.GetCurrentFunc(ctx, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[kind]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

func (m *CredentialRepository) Upsert(ctx context.Context, kind models.CredentialKind, fields map[string]string) (*models.CredentialRecord, error) {
	m.mu.Lock()
	m.Calls["Upsert"] = append(m.Calls["Upsert"], kind)
	m.mu.Unlock()
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, kind, fields)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[kind]
	if !ok {
		m.nextID++
		rec = &models.CredentialRecord{ID: m.nextID, Kind: kind, IsActive: true}
		m.records[kind] = rec
	}
	rec.Fields = copyFields(fields)
	rec.LastUpdated = time.Now()
	return copyRecord(rec), nil
}

func copyRecord(rec *models.CredentialRecord) *models.CredentialRecord {
	out := *rec
	out.Fields = copyFields(rec.Fields)
	return &out
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

var _ repositories.CredentialRepository = (*CredentialRepository)(nil)
