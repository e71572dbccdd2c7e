package trial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmix/domain/core"
)

func TestSplitArms_PartitionsAndCounts(t *testing.T) {
	ds := validDataset()

	control, intervention, err := SplitArms(ds)
	require.NoError(t, err)

	assert.Equal(t, Control, control.Arm)
	assert.Equal(t, Intervention, intervention.Arm)
	assert.Equal(t, ds.N(), control.N+intervention.N)

	assert.Equal(t, []int{0, 1}, control.Rows)
	assert.Equal(t, []int{2, 3}, intervention.Rows)

	// N_observed + N_missing == N per outcome, per arm.
	for _, arm := range []*ArmData{control, intervention} {
		assert.Equal(t, arm.N, arm.EffectObserved+arm.EffectMissing)
		assert.Equal(t, arm.N, arm.CostObserved+arm.CostMissing)
	}
	assert.Equal(t, 1, intervention.EffectMissing)
	assert.Equal(t, 1, control.CostMissing)
	assert.Equal(t, 2, control.CompleteCasesEffect())
	assert.Equal(t, 1, control.CompleteCasesCost())
	assert.Equal(t, 1, intervention.CompleteCasesEffect())
	assert.Equal(t, 2, intervention.CompleteCasesCost())
}

func TestSplitArms_PreservesRowOrder(t *testing.T) {
	ds := &Dataset{
		Effect: Values{Some(1), Some(2), Some(3), None(), Some(5)},
		Cost:   Values{Some(10), None(), Some(30), Some(40), Some(50)},
		Arm:    []string{"2", "1", "2", "1", "1"},
	}

	control, intervention, err := SplitArms(ds)
	require.NoError(t, err)

	assert.Equal(t, Values{Some(2), None(), Some(5)}, control.Effect)
	assert.Equal(t, Values{Some(1), Some(3)}, intervention.Effect)
	assert.Equal(t, []int{1, 3, 4}, control.Rows)
	assert.Equal(t, []int{0, 2}, intervention.Rows)
}

func TestSplitArms_RejectsUnknownCoding(t *testing.T) {
	ds := validDataset()
	ds.Arm = []string{"A", "A", "B", "B"}

	_, _, err := SplitArms(ds)
	assert.True(t, core.IsArmCodingError(err))
	assert.ErrorContains(t, err, "A")
}

func TestSplitArms_SummariesUseCompleteCasesOnly(t *testing.T) {
	ds := &Dataset{
		Effect: Values{Some(2), None(), Some(4), Some(9)},
		Cost:   Values{Some(10), Some(20), None(), Some(100)},
		Arm:    []string{"1", "1", "1", "2"},
	}

	control, _, err := SplitArms(ds)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, control.EffectSummary.Mean, 1e-12)
	assert.InDelta(t, 15.0, control.CostSummary.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt2, control.EffectSummary.StdDev, 1e-12)
	assert.InDelta(t, math.Sqrt(50), control.CostSummary.StdDev, 1e-12)
}

func TestSplitThenCount_PermutationInvariant(t *testing.T) {
	// Arm-level observed/missing counts cannot depend on row order.
	base := &Dataset{
		Effect: make(Values, 60),
		Cost:   make(Values, 60),
		Arm:    make([]string, 60),
	}
	for i := range base.Arm {
		base.Effect[i] = Some(float64(i))
		base.Cost[i] = Some(float64(i) * 2)
		if i%7 == 0 {
			base.Effect[i] = None()
		}
		if i%9 == 0 {
			base.Cost[i] = None()
		}
		base.Arm[i] = "1"
		if i >= 35 {
			base.Arm[i] = "2"
		}
	}

	c1, i1, err := SplitArms(base)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(60)
	shuffled := &Dataset{
		Effect: make(Values, 60),
		Cost:   make(Values, 60),
		Arm:    make([]string, 60),
	}
	for dst, src := range perm {
		shuffled.Effect[dst] = base.Effect[src]
		shuffled.Cost[dst] = base.Cost[src]
		shuffled.Arm[dst] = base.Arm[src]
	}

	c2, i2, err := SplitArms(shuffled)
	require.NoError(t, err)

	assert.Equal(t, c1.N, c2.N)
	assert.Equal(t, i1.N, i2.N)
	assert.Equal(t, c1.EffectMissing, c2.EffectMissing)
	assert.Equal(t, c1.CostMissing, c2.CostMissing)
	assert.Equal(t, i1.EffectMissing, i2.EffectMissing)
	assert.Equal(t, i1.CostMissing, i2.CostMissing)
}
