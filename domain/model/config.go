package model

import (
	"fmt"
	"time"

	"costmix/domain/core"
	"costmix/domain/trial"
)

// Config is the fully specified, self-consistent model configuration handed
// to the external inference engine. It is assembled exactly once per model
// run and never mutated afterwards; several sampling chains may read it
// concurrently, which is safe precisely because nothing in here is lazy or
// shared-mutable.
type Config struct {
	ID        core.ConfigID `json:"id"`
	CreatedAt time.Time     `json:"created_at"`

	Variant Variant    `json:"variant"`
	Tag     VariantTag `json:"tag"`

	Control      *trial.ArmData `json:"control"`
	Intervention *trial.ArmData `json:"intervention"`

	// Designs carries one matrix per built descriptor per arm.
	Designs []*DesignMatrix `json:"designs"`

	ControlIndicators      *trial.Indicators `json:"control_indicators"`
	InterventionIndicators *trial.Indicators `json:"intervention_indicators"`

	Priors map[string][2]float64 `json:"priors"`

	Fingerprint core.DatasetFingerprint `json:"fingerprint"`
}

// Design returns the matrix built for a role in an arm, or nil.
func (c *Config) Design(role Role, arm trial.Arm) *DesignMatrix {
	for _, d := range c.Designs {
		if d.Role == role && d.Arm == arm {
			return d
		}
	}
	return nil
}

// AssembleInput is everything the assembler merges into one Config.
type AssembleInput struct {
	Variant                Variant
	Control                *trial.ArmData
	Intervention           *trial.ArmData
	Designs                []*DesignMatrix
	ControlIndicators      *trial.Indicators
	InterventionIndicators *trial.Indicators
	Overrides              []PriorOverride
}

// Assemble merges arm data, design matrices, indicator vectors, the
// resolved variant and the prior bindings into one immutable Config. Prior
// resolution happens here and nowhere else; downstream consumers read the
// binding map, they never re-derive defaults. On any failure no partial
// Config is returned.
func Assemble(in AssembleInput) (*Config, error) {
	priors, err := ResolvePriors(in.Variant, in.Overrides)
	if err != nil {
		return nil, err
	}
	return &Config{
		ID:                     core.ConfigID(core.NewID()),
		CreatedAt:              time.Now().UTC(),
		Variant:                in.Variant,
		Tag:                    in.Variant.Tag(),
		Control:                in.Control,
		Intervention:           in.Intervention,
		Designs:                in.Designs,
		ControlIndicators:      in.ControlIndicators,
		InterventionIndicators: in.InterventionIndicators,
		Priors:                 priors,
		Fingerprint:            fingerprint(in.Control, in.Intervention),
	}, nil
}

// fingerprint hashes the dataset shape: arm sizes and the positional
// missingness pattern of both outcomes. Identical trial shapes produce
// identical fingerprints, which is what stored-config reproducibility
// checks compare.
func fingerprint(control, intervention *trial.ArmData) core.DatasetFingerprint {
	var b []byte
	for _, arm := range []*trial.ArmData{control, intervention} {
		b = append(b, []byte(fmt.Sprintf("%s:%d;", arm.Arm, arm.N))...)
		for _, v := range arm.Effect {
			if v.Missing() {
				b = append(b, '1')
			} else {
				b = append(b, '0')
			}
		}
		b = append(b, '|')
		for _, v := range arm.Cost {
			if v.Missing() {
				b = append(b, '1')
			} else {
				b = append(b, '0')
			}
		}
		b = append(b, ';')
	}
	return core.NewDatasetFingerprint(b)
}
