package ports

import (
	"context"
	"time"

	"costmix/domain/core"
	"costmix/domain/model"
)

// ConfigSummary is the listing row for a stored model configuration.
type ConfigSummary struct {
	ID          core.ConfigID           `json:"id"`
	Tag         model.VariantTag        `json:"tag"`
	Fingerprint core.DatasetFingerprint `json:"fingerprint"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ConfigRepositoryPort persists assembled model configurations. Stored
// configs are write-once: there is no update operation because a Config is
// never mutated after assembly.
type ConfigRepositoryPort interface {
	Save(ctx context.Context, cfg *model.Config) error
	GetByID(ctx context.Context, id core.ConfigID) (*model.Config, error)
	List(ctx context.Context, limit, offset int) ([]ConfigSummary, error)
}
