package trial

import (
	"fmt"

	"costmix/domain/core"
)

// Indicators holds the per-arm 0/1 indicator vectors derived from one arm's
// raw outcome vectors. Missingness indicators are plain ints because they
// are defined at every position; structural indicators are optional-valued
// because the structural status of a missing observation is unknown by
// construction and must never be imputed as "not structural".
type Indicators struct {
	MissingEffect []int `json:"m_e"`
	MissingCost   []int `json:"m_c"`

	// Structural indicators are nil when no structural value was declared
	// for that outcome.
	StructuralEffect Values `json:"d_e,omitempty"`
	StructuralCost   Values `json:"d_c,omitempty"`
}

// StructuralSpec declares structural values for hurdle-type models and,
// optionally, externally supplied indicator override vectors. Overrides are
// aligned to the original dataset row order, before arm splitting.
type StructuralSpec struct {
	EffectValue *float64
	CostValue   *float64

	EffectOverride Values
	CostOverride   Values
}

// Declared reports whether any structural value is declared
func (s StructuralSpec) Declared() bool {
	return s.EffectValue != nil || s.CostValue != nil
}

// BuildIndicators derives the indicator vectors for one arm. The
// missingness indicator is always a pure function of the raw vector, never
// supplied externally. A structural indicator is derived from the declared
// structural value, or taken from the override vector when one is supplied;
// an override must cover the whole dataset (datasetN entries) and may only
// accompany a declared structural value. A declared structural value that
// never occurs in the data is fine: the indicator is simply all zero.
func BuildIndicators(arm *ArmData, datasetN int, spec StructuralSpec) (*Indicators, error) {
	ind := &Indicators{
		MissingEffect: MissingnessIndicator(arm.Effect),
		MissingCost:   MissingnessIndicator(arm.Cost),
	}

	var err error
	ind.StructuralEffect, err = structuralForArm(arm, arm.Effect, FieldEffect, spec.EffectValue, spec.EffectOverride, datasetN)
	if err != nil {
		return nil, err
	}
	ind.StructuralCost, err = structuralForArm(arm, arm.Cost, FieldCost, spec.CostValue, spec.CostOverride, datasetN)
	if err != nil {
		return nil, err
	}
	return ind, nil
}

// MissingnessIndicator returns 1 exactly where the raw value is absent.
func MissingnessIndicator(vs Values) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		if v.Missing() {
			out[i] = 1
		}
	}
	return out
}

// StructuralIndicator returns 1 where the observed value equals the
// structural value, 0 where it differs, and a missing entry where the
// outcome itself is missing.
func StructuralIndicator(vs Values, structural float64) Values {
	out := make(Values, len(vs))
	for i, v := range vs {
		switch {
		case v.Missing():
			out[i] = None()
		case v.Float == structural:
			out[i] = Some(1)
		default:
			out[i] = Some(0)
		}
	}
	return out
}

func structuralForArm(arm *ArmData, raw Values, outcome string, declared *float64, override Values, datasetN int) (Values, error) {
	if override != nil {
		if declared == nil {
			return nil, core.NewIndicatorOverrideError(outcome, "override supplied without a declared structural value")
		}
		if len(override) != datasetN {
			return nil, core.NewIndicatorOverrideError(outcome,
				fmt.Sprintf("override has %d entries, dataset has %d rows", len(override), datasetN))
		}
		out := make(Values, arm.N)
		for i, row := range arm.Rows {
			out[i] = override[row]
		}
		return out, nil
	}
	if declared == nil {
		return nil, nil
	}
	return StructuralIndicator(raw, *declared), nil
}
