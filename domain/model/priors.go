package model

import (
	"sort"

	"costmix/domain/core"
)

// PriorOverride binds a recognized prior-family name to a two-element
// hyperparameter vector. Overrides are carried as a list, not a map, so a
// duplicated name is representable and can be rejected.
type PriorOverride struct {
	Name   string     `json:"name"`
	Values [2]float64 `json:"values"`
}

// priorFamily describes one recognized prior parameter family: its default
// hyperparameters and the variants it applies to.
type priorFamily struct {
	defaults   [2]float64
	applicable func(Variant) bool
}

func always(Variant) bool { return true }

// priorCatalogue is the closed set of recognized prior-family names.
// Location/scale pairs are (mean, precision) for regression coefficients
// and (lower, upper) for uniform standard deviation priors, passed through
// to the inference engine untouched.
var priorCatalogue = map[string]priorFamily{
	// Outcome model intercepts and coefficients.
	"alpha0.prior": {defaults: [2]float64{0, 0.0001}, applicable: always},
	"alpha.prior": {defaults: [2]float64{0, 0.0001}, applicable: func(v Variant) bool {
		return v.Classifiers.EffectModelCovariates
	}},
	"beta0.prior": {defaults: [2]float64{0, 0.0001}, applicable: always},
	"beta.prior": {defaults: [2]float64{0, 0.0001}, applicable: func(v Variant) bool {
		return v.Classifiers.CostModelCovariates
	}},

	// Outcome scale parameters.
	"sigma.prior.e": {defaults: [2]float64{0, 100}, applicable: always},
	"sigma.prior.c": {defaults: [2]float64{0, 100}, applicable: always},

	// Mechanism model intercepts and coefficients (missingness under the
	// selection family, structural indicators under the hurdle family).
	"gamma0.prior.e": {defaults: [2]float64{0, 0.01}, applicable: func(v Variant) bool {
		return v.Family == FamilySelection || v.Classifiers.StructuralEffect
	}},
	"gamma.prior.e": {defaults: [2]float64{0, 0.01}, applicable: func(v Variant) bool {
		return v.Classifiers.EffectMechanismCovariates
	}},
	"gamma0.prior.c": {defaults: [2]float64{0, 0.01}, applicable: func(v Variant) bool {
		return v.Family == FamilySelection || v.Classifiers.StructuralCost
	}},
	"gamma.prior.c": {defaults: [2]float64{0, 0.01}, applicable: func(v Variant) bool {
		return v.Classifiers.CostMechanismCovariates
	}},

	// MNAR departure terms.
	"delta.prior.e": {defaults: [2]float64{0, 1}, applicable: func(v Variant) bool {
		return v.Type == MNAR
	}},
	"delta.prior.c": {defaults: [2]float64{0, 1}, applicable: func(v Variant) bool {
		return v.Type == MNAR
	}},

	// Cross-outcome regression coefficient (cost on effect).
	"theta.prior": {defaults: [2]float64{0, 0.0001}, applicable: func(v Variant) bool {
		return v.Classifiers.Joint
	}},
}

// PriorNames returns the recognized prior-family names in sorted order.
func PriorNames() []string {
	names := make([]string, 0, len(priorCatalogue))
	for name := range priorCatalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePriors produces the prior-hyperparameter binding map for a
// resolved variant: built-in defaults for every family applicable to the
// variant, replaced by caller overrides where supplied. An override under
// an unrecognized name, a name inapplicable to the variant, or a duplicated
// name is a prior binding error.
func ResolvePriors(v Variant, overrides []PriorOverride) (map[string][2]float64, error) {
	bindings := make(map[string][2]float64)
	for name, family := range priorCatalogue {
		if family.applicable(v) {
			bindings[name] = family.defaults
		}
	}

	seen := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		family, ok := priorCatalogue[o.Name]
		if !ok {
			return nil, core.NewPriorBindingError(o.Name, "unrecognized prior family")
		}
		if !family.applicable(v) {
			return nil, core.NewPriorBindingError(o.Name, "not applicable to resolved variant "+string(v.Tag()))
		}
		if seen[o.Name] {
			return nil, core.NewPriorBindingError(o.Name, "duplicate override")
		}
		seen[o.Name] = true
		bindings[o.Name] = o.Values
	}
	return bindings, nil
}
