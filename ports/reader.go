package ports

import (
	"context"

	"costmix/domain/trial"
)

// DatasetReaderPort loads a raw trial dataset from an external source.
// Readers only ingest; all contract checking is left to the schema
// validator so every source is held to exactly the same rules.
type DatasetReaderPort interface {
	Read(ctx context.Context, path string) (*trial.Dataset, error)
}
