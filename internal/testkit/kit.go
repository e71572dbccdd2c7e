package testkit

import (
	"context"
	"math/rand"

	"costmix/domain/model"
	"costmix/domain/trial"
	"costmix/ports"
)

// Canonical synthetic trial shape used across tests and the CLI demo:
// 250 subjects (150 control, 100 intervention), two fully observed
// covariates, and 11 missing effect plus 11 missing cost values per arm at
// fixed positions. The missingness pattern is deterministic and independent
// of the seed so that shape-derived results are stable across runs.
const (
	ControlN      = 150
	InterventionN = 100
	MissingPerArm = 11
)

// GenerateTrial returns the canonical synthetic two-arm trial dataset.
func GenerateTrial(seed int64) *trial.Dataset {
	rng := rand.New(rand.NewSource(seed))
	n := ControlN + InterventionN

	ds := &trial.Dataset{
		Effect:         make(trial.Values, 0, n),
		Cost:           make(trial.Values, 0, n),
		Arm:            make([]string, 0, n),
		CovariateNames: []string{"age", "sex"},
		Covariates: map[string]trial.Values{
			"age": make(trial.Values, 0, n),
			"sex": make(trial.Values, 0, n),
		},
	}

	appendArm := func(code string, size int, effectShift float64) {
		missE := missingPositions(size, 5, 13)
		missC := missingPositions(size, 3, 11)
		for i := 0; i < size; i++ {
			ds.Arm = append(ds.Arm, code)

			e := clamp(0.62+effectShift+0.15*rng.NormFloat64(), 0.01, 0.99)
			c := 180 + 120*absNorm(rng)
			if missE[i] {
				ds.Effect = append(ds.Effect, trial.None())
			} else {
				ds.Effect = append(ds.Effect, trial.Some(e))
			}
			if missC[i] {
				ds.Cost = append(ds.Cost, trial.None())
			} else {
				ds.Cost = append(ds.Cost, trial.Some(c))
			}

			ds.Covariates["age"] = append(ds.Covariates["age"], trial.Some(float64(20+rng.Intn(40))))
			ds.Covariates["sex"] = append(ds.Covariates["sex"], trial.Some(float64(rng.Intn(2))))
		}
	}

	appendArm(trial.ControlCode, ControlN, 0)
	appendArm(trial.InterventionCode, InterventionN, 0.08)
	return ds
}

// GenerateHurdleTrial is the canonical dataset with structural mass added:
// roughly a fifth of observed costs set to 0 and observed effects to 1, at
// deterministic positions.
func GenerateHurdleTrial(seed int64) *trial.Dataset {
	ds := GenerateTrial(seed)
	for i := range ds.Cost {
		if ds.Cost[i].Valid && i%5 == 0 {
			ds.Cost[i] = trial.Some(0)
		}
		if ds.Effect[i].Valid && i%7 == 0 {
			ds.Effect[i] = trial.Some(1)
		}
	}
	return ds
}

// InterceptOnlyDescriptors returns the six role-bound descriptors with no
// covariates anywhere.
func InterceptOnlyDescriptors() model.DescriptorSet {
	return model.DescriptorSet{
		Effect:           model.Descriptor{Response: model.ResponseEffect},
		Cost:             model.Descriptor{Response: model.ResponseCost},
		MissingEffect:    model.Descriptor{Response: model.ResponseMissingEffect},
		MissingCost:      model.Descriptor{Response: model.ResponseMissingCost},
		StructuralEffect: model.Descriptor{Response: model.ResponseStructuralEffect},
		StructuralCost:   model.Descriptor{Response: model.ResponseStructuralCost},
	}
}

// missingPositions marks MissingPerArm rows missing, stepping through the
// arm at a fixed stride and wrapping so small arms still reach the count.
func missingPositions(size, start, stride int) map[int]bool {
	out := make(map[int]bool, MissingPerArm)
	for i := start; len(out) < MissingPerArm; i += stride {
		out[i%size] = true
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absNorm(rng *rand.Rand) float64 {
	v := rng.NormFloat64()
	if v < 0 {
		return -v
	}
	return v
}

// FakeSampler is a deterministic stand-in for the external inference
// engine, used to test the hand-off wiring without running any MCMC.
type FakeSampler struct{}

// NewFakeSampler creates a fake sampler
func NewFakeSampler() ports.SamplerPort {
	return &FakeSampler{}
}

// Sample returns one fixed draw per chain for every bound prior parameter
func (f *FakeSampler) Sample(ctx context.Context, cfg *model.Config, opts ports.SampleOptions) (*ports.PosteriorDraws, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chains := opts.Chains
	if chains < 1 {
		chains = 1
	}
	draws := &ports.PosteriorDraws{Parameters: make(map[string][][]float64)}
	for name, vals := range cfg.Priors {
		perChain := make([][]float64, chains)
		for c := range perChain {
			perChain[c] = []float64{vals[0]}
		}
		draws.Parameters[name] = perChain
	}
	return draws, nil
}
