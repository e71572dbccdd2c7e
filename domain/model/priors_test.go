package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costmix/domain/core"
)

func mcarVariant(t *testing.T) Variant {
	t.Helper()
	v, err := Resolve(interceptOnlySet(), marFlags())
	require.NoError(t, err)
	return v
}

func TestResolvePriors_DefaultsForApplicableFamilies(t *testing.T) {
	v := mcarVariant(t)

	priors, err := ResolvePriors(v, nil)
	require.NoError(t, err)

	assert.Contains(t, priors, "alpha0.prior")
	assert.Contains(t, priors, "beta0.prior")
	assert.Contains(t, priors, "sigma.prior.e")
	assert.Contains(t, priors, "gamma0.prior.e")
	assert.Contains(t, priors, "gamma0.prior.c")

	// Intercept-only everywhere and independent outcomes: no coefficient,
	// departure or joint priors are bound.
	assert.NotContains(t, priors, "alpha.prior")
	assert.NotContains(t, priors, "gamma.prior.e")
	assert.NotContains(t, priors, "delta.prior.e")
	assert.NotContains(t, priors, "theta.prior")
}

func TestResolvePriors_OverrideReplacesDefault(t *testing.T) {
	v := mcarVariant(t)

	priors, err := ResolvePriors(v, []PriorOverride{
		{Name: "sigma.prior.e", Values: [2]float64{0, 50}},
	})
	require.NoError(t, err)

	assert.Equal(t, [2]float64{0, 50}, priors["sigma.prior.e"])
}

func TestResolvePriors_InapplicableName(t *testing.T) {
	// gamma.prior.e binds missingness-model coefficients; with an
	// intercept-only effect-missingness descriptor there are none.
	v := mcarVariant(t)

	_, err := ResolvePriors(v, []PriorOverride{
		{Name: "gamma.prior.e", Values: [2]float64{0, 1}},
	})
	assert.True(t, core.IsPriorBindingError(err))
	assert.ErrorContains(t, err, "gamma.prior.e")
}

func TestResolvePriors_UnrecognizedName(t *testing.T) {
	_, err := ResolvePriors(mcarVariant(t), []PriorOverride{
		{Name: "tau.prior", Values: [2]float64{0, 1}},
	})
	assert.True(t, core.IsPriorBindingError(err))
}

func TestResolvePriors_DuplicateName(t *testing.T) {
	_, err := ResolvePriors(mcarVariant(t), []PriorOverride{
		{Name: "sigma.prior.e", Values: [2]float64{0, 50}},
		{Name: "sigma.prior.e", Values: [2]float64{0, 25}},
	})
	assert.True(t, core.IsPriorBindingError(err))
	assert.ErrorContains(t, err, "duplicate")
}

func TestResolvePriors_VariantDependentFamilies(t *testing.T) {
	t.Run("MNAR binds departure priors", func(t *testing.T) {
		v, err := Resolve(interceptOnlySet(), Flags{Type: MNAR, EffectDist: EffectNormal, CostDist: CostNormal})
		require.NoError(t, err)
		priors, err := ResolvePriors(v, nil)
		require.NoError(t, err)
		assert.Contains(t, priors, "delta.prior.e")
		assert.Contains(t, priors, "delta.prior.c")
	})

	t.Run("joint binds theta", func(t *testing.T) {
		set := interceptOnlySet()
		set.Cost.Covariates = []string{ResponseEffect}
		v, err := Resolve(set, marFlags())
		require.NoError(t, err)
		priors, err := ResolvePriors(v, nil)
		require.NoError(t, err)
		assert.Contains(t, priors, "theta.prior")
	})

	t.Run("hurdle binds only declared outcome", func(t *testing.T) {
		zero := 0.0
		v, err := Resolve(interceptOnlySet(), Flags{
			Type: SCAR, EffectDist: EffectNormal, CostDist: CostGamma, StructuralCostValue: &zero,
		})
		require.NoError(t, err)
		priors, err := ResolvePriors(v, nil)
		require.NoError(t, err)
		assert.Contains(t, priors, "gamma0.prior.c")
		assert.NotContains(t, priors, "gamma0.prior.e")
	})
}

func TestPriorNames_SortedAndClosed(t *testing.T) {
	names := PriorNames()
	assert.Len(t, names, len(priorCatalogue))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
