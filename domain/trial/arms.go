package trial

import (
	"github.com/montanaflynn/stats"

	"costmix/domain/core"
)

// SplitArms partitions the dataset into its two treatment arms. Level "1"
// maps to Control and "2" to Intervention; any other two-level coding is
// rejected with an arm coding error. Within each arm the original row order
// is preserved, and the original row indices are retained so that
// dataset-aligned vectors (e.g. indicator overrides) can be re-partitioned
// the same way later. No numeric transformation happens here.
func SplitArms(d *Dataset) (control, intervention *ArmData, err error) {
	levels := armLevels(d.Arm)
	if len(levels) != 2 {
		return nil, nil, core.NewArmCodingError(levels)
	}
	for _, lvl := range levels {
		if lvl != ControlCode && lvl != InterventionCode {
			return nil, nil, core.NewArmCodingError(levels)
		}
	}

	control = &ArmData{Arm: Control}
	intervention = &ArmData{Arm: Intervention}
	for i, code := range d.Arm {
		target := control
		if code == InterventionCode {
			target = intervention
		}
		target.Rows = append(target.Rows, i)
		target.Effect = append(target.Effect, d.Effect[i])
		target.Cost = append(target.Cost, d.Cost[i])
	}

	for _, arm := range []*ArmData{control, intervention} {
		arm.N = len(arm.Rows)
		arm.EffectMissing = arm.Effect.CountMissing()
		arm.EffectObserved = arm.N - arm.EffectMissing
		arm.CostMissing = arm.Cost.CountMissing()
		arm.CostObserved = arm.N - arm.CostMissing
		arm.EffectSummary = summarize(arm.Effect)
		arm.CostSummary = summarize(arm.Cost)
	}
	return control, intervention, nil
}

// summarize computes complete-case mean and standard deviation for an
// outcome vector. Both are zero when nothing is observed.
func summarize(vs Values) ArmSummary {
	obs := vs.Observed()
	if len(obs) == 0 {
		return ArmSummary{}
	}
	mean, err := stats.Mean(obs)
	if err != nil {
		return ArmSummary{}
	}
	sd := 0.0
	if len(obs) > 1 {
		sd, err = stats.StandardDeviationSample(obs)
		if err != nil {
			sd = 0
		}
	}
	return ArmSummary{Mean: mean, StdDev: sd}
}
