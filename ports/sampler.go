package ports

import (
	"context"

	"costmix/domain/model"
)

// SampleOptions controls one invocation of the external inference engine.
type SampleOptions struct {
	Chains     int   `json:"chains"`
	Iterations int   `json:"iterations"`
	Burnin     int   `json:"burnin"`
	Thin       int   `json:"thin"`
	Seed       int64 `json:"seed"`
}

// PosteriorDraws is the engine's output: per-parameter draws, one slice per
// chain. The preparation layer never interprets these; it only hands them
// back to the caller.
type PosteriorDraws struct {
	Parameters map[string][][]float64 `json:"parameters"`
}

// SamplerPort is the hand-off boundary to the external MCMC engine. The
// engine may run its chains in parallel against the same Config; the
// preparation layer's only obligation to that concurrency is Config
// immutability, which holds by construction.
type SamplerPort interface {
	Sample(ctx context.Context, cfg *model.Config, opts SampleOptions) (*PosteriorDraws, error)
}
