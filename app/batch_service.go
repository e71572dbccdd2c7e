package app

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"costmix/domain/model"
	"costmix/domain/trial"
	"costmix/internal"
)

// Scenario is one named descriptor/flag/prior combination to prepare
// against a shared dataset, e.g. one cell of a sensitivity analysis grid.
type Scenario struct {
	Name        string
	Descriptors model.DescriptorSet
	Flags       model.Flags
	Priors      []model.PriorOverride
}

// ScenarioResult pairs a scenario name with its config or its failure.
// Failures are per scenario; one bad cell does not abort the grid.
type ScenarioResult struct {
	Name   string
	Config *model.Config
	Err    error
}

// BatchService prepares several scenarios concurrently against one dataset.
// Safe because every pipeline stage is a pure function with no shared
// mutable state; the semaphore only bounds memory, not correctness.
type BatchService struct {
	prep *PrepService
	log  *internal.Logger
	sem  *semaphore.Weighted
}

// NewBatchService creates a batch service with the given concurrency bound
func NewBatchService(prep *PrepService, log *internal.Logger, maxConcurrent int64) *BatchService {
	if log == nil {
		log = internal.DefaultLogger
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BatchService{prep: prep, log: log, sem: semaphore.NewWeighted(maxConcurrent)}
}

// BuildAll prepares every scenario and returns results in scenario order.
func (s *BatchService) BuildAll(ctx context.Context, ds *trial.Dataset, scenarios []Scenario) []ScenarioResult {
	results := make([]ScenarioResult, len(scenarios))
	var wg sync.WaitGroup

	for i, sc := range scenarios {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			results[i] = ScenarioResult{Name: sc.Name, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			defer s.sem.Release(1)
			cfg, err := s.prep.Build(ctx, PrepRequest{
				Dataset:     ds,
				Descriptors: sc.Descriptors,
				Flags:       sc.Flags,
				Priors:      sc.Priors,
			})
			if err != nil {
				s.log.Warn("scenario %q failed: %v", sc.Name, err)
			}
			results[i] = ScenarioResult{Name: sc.Name, Config: cfg, Err: err}
		}(i, sc)
	}

	wg.Wait()
	return results
}
