package repository

import (
	"context"
	"database/sql"

	"evconduit/internal/models"
)

// APIKeyRepository persists hashed integration keys.
type APIKeyRepository struct {
	db *sql.DB
}

// NewAPIKeyRepository returns repository.
func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a new key record and fills in ID and CreatedAt.
func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	const query = `
		INSERT INTO api_keys (user_id, name, prefix, key_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		key.UserID,
		key.Name,
		key.Prefix,
		key.KeyHash,
	).Scan(&key.ID, &key.CreatedAt)
}

// FindByPrefix returns candidate keys sharing a lookup prefix. Bcrypt comparison
// against the full key happens in the caller.
func (r *APIKeyRepository) FindByPrefix(ctx context.Context, prefix string) ([]models.APIKey, error) {
	const query = `
		SELECT id, user_id, name, prefix, key_hash, created_at, last_used_at
		FROM api_keys
		WHERE prefix = $1
	`
	rows, err := r.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(
			&k.ID,
			&k.UserID,
			&k.Name,
			&k.Prefix,
			&k.KeyHash,
			&k.CreatedAt,
			&k.LastUsedAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// TouchLastUsed records key usage.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id int64) error {
	const query = `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
