package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/ganot/ticklink/internal/repository"
)

// CacheRepository implements repository.CacheRepository for SQLite.
// Field values are stored as JSON text.
type CacheRepository struct {
	db *DB
}

// NewCacheRepository creates a new CacheRepository
func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// PutFields upserts fields of one entity in a single transaction
func (r *CacheRepository) PutFields(ctx context.Context, entityID string, fields map[string]any) error {
	if entityID == "" {
		return repository.ErrInvalidInput
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO cache_fields (entity_id, field, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(entity_id, field) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	for name, value := range fields {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, query, entityID, name, string(encoded)); err != nil {
			return fmt.Errorf("failed to put field %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache write: %w", err)
	}
	return nil
}

// GetFields returns the stored values of the named fields. Missing fields
// are absent from the result.
func (r *CacheRepository) GetFields(ctx context.Context, entityID string, names []string) (map[string]any, error) {
	values := make(map[string]any, len(names))
	if len(names) == 0 {
		return values, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := `SELECT field, value FROM cache_fields WHERE entity_id = ? AND field IN (` + placeholders + `)`

	args := make([]any, 0, len(names)+1)
	args = append(args, entityID)
	for _, name := range names {
		args = append(args, name)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		name, value, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache rows: %w", err)
	}

	return values, nil
}

// List returns every stored field grouped by entity
func (r *CacheRepository) List(ctx context.Context) (cache.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT entity_id, field, value FROM cache_fields ORDER BY entity_id, field`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	defer rows.Close()

	snap := cache.Snapshot{}
	for rows.Next() {
		var entityID, name, raw string
		if err := rows.Scan(&entityID, &name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan cache field: %w", err)
		}
		value, err := decodeValue(name, raw)
		if err != nil {
			return nil, err
		}
		if snap[entityID] == nil {
			snap[entityID] = map[string]any{}
		}
		snap[entityID][name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache rows: %w", err)
	}

	return snap, nil
}

// Reset removes every cached field
func (r *CacheRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_fields`); err != nil {
		return fmt.Errorf("failed to reset cache: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (string, any, error) {
	var name, raw string
	if err := row.Scan(&name, &raw); err != nil {
		return "", nil, fmt.Errorf("failed to scan cache field: %w", err)
	}
	value, err := decodeValue(name, raw)
	return name, value, err
}

func decodeValue(name, raw string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("failed to decode field %s: %w", name, err)
	}
	return value, nil
}
