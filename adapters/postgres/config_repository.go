package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"costmix/domain/core"
	"costmix/domain/model"
	"costmix/ports"
)

// configRepository implements ports.ConfigRepositoryPort on PostgreSQL.
// Configs are stored write-once as JSONB payloads with the identifying
// columns lifted out for listing.
type configRepository struct {
	db *sqlx.DB
}

// NewConfigRepository creates a new model-config repository
func NewConfigRepository(db *sqlx.DB) ports.ConfigRepositoryPort {
	return &configRepository{db: db}
}

// Migrate creates the model_configs table if it does not exist
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS model_configs (
		id          TEXT PRIMARY KEY,
		tag         TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		payload     JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create model_configs table: %w", err)
	}
	return nil
}

// Save inserts an assembled config
func (r *configRepository) Save(ctx context.Context, cfg *model.Config) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	query := `INSERT INTO model_configs (id, tag, fingerprint, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.ExecContext(ctx, query,
		cfg.ID.String(), string(cfg.Tag), cfg.Fingerprint.String(), payload, cfg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// GetByID retrieves a stored config by its ID
func (r *configRepository) GetByID(ctx context.Context, id core.ConfigID) (*model.Config, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM model_configs WHERE id = $1`, id.String()).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("config not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	var cfg model.Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// List returns stored config summaries, newest first
func (r *configRepository) List(ctx context.Context, limit, offset int) ([]ports.ConfigSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tag, fingerprint, created_at FROM model_configs
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	var out []ports.ConfigSummary
	for rows.Next() {
		var s ports.ConfigSummary
		var id, tag, fp string
		if err := rows.Scan(&id, &tag, &fp, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan config row: %w", err)
		}
		s.ID = core.ConfigID(id)
		s.Tag = model.VariantTag(tag)
		s.Fingerprint = core.DatasetFingerprint(fp)
		out = append(out, s)
	}
	return out, rows.Err()
}
