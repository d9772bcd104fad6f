package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cipher seals credential fields before they reach the table
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type plainCipher struct{}

func (plainCipher) Encrypt(b []byte) ([]byte, error) { return b, nil }
func (plainCipher) Decrypt(b []byte) ([]byte, error) { return b, nil }

// CredentialRepository stores integration credentials in integration_credentials
type CredentialRepository struct {
	pool   *pgxpool.Pool
	cipher Cipher
}

// NewCredentialRepository creates a credential repository. A nil cipher stores fields as plain JSON.
func NewCredentialRepository(pool *pgxpool.Pool, cipher Cipher) *CredentialRepository {
	if cipher == nil {
		cipher = plainCipher{}
	}
	return &CredentialRepository{pool: pool, cipher: cipher}
}

var _ repositories.CredentialRepository = (*CredentialRepository)(nil)

// GetCurrent returns the most recently updated active record for kind, or nil when unconfigured
func (r *CredentialRepository) GetCurrent(ctx context.Context, kind models.CredentialKind) (*models.CredentialRecord, error) {
	var (
		rec     models.CredentialRecord
		kindStr string
		sealed  []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, kind, fields, is_active, last_updated
		FROM integration_credentials
		WHERE kind = $1 AND is_active = true
		ORDER BY last_updated DESC, id DESC
		LIMIT 1
	`, string(kind)).Scan(&rec.ID, &kindStr, &sealed, &rec.IsActive, &rec.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s credential: %w", kind, err)
	}

	rec.Kind = models.CredentialKind(kindStr)
	if rec.Fields, err = r.open(sealed); err != nil {
		return nil, fmt.Errorf("failed to decode %s credential: %w", kind, err)
	}
	return &rec, nil
}

// Upsert replaces the active record for kind, creating it on first save
func (r *CredentialRepository) Upsert(ctx context.Context, kind models.CredentialKind, fields map[string]string) (*models.CredentialRecord, error) {
	sealed, err := r.seal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s credential: %w", kind, err)
	}

	rec := models.CredentialRecord{Kind: kind, Fields: fields}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO integration_credentials (kind, fields, is_active, last_updated)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (kind) WHERE is_active
		DO UPDATE SET fields = EXCLUDED.fields, last_updated = EXCLUDED.last_updated
		RETURNING id, is_active, last_updated
	`, string(kind), sealed).Scan(&rec.ID, &rec.IsActive, &rec.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s credential: %w", kind, err)
	}
	return &rec, nil
}

func (r *CredentialRepository) seal(fields map[string]string) ([]byte, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return r.cipher.Encrypt(raw)
}

func (r *CredentialRepository) open(sealed []byte) (map[string]string, error) {
	raw, err := r.cipher.Decrypt(sealed)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
