package model

import (
	"fmt"

	"costmix/domain/core"
)

// EffectDist selects the effect outcome distribution.
type EffectDist string

const (
	EffectNormal EffectDist = "norm"
	EffectBeta   EffectDist = "beta"
)

// CostDist selects the cost outcome distribution.
type CostDist string

const (
	CostNormal    CostDist = "norm"
	CostGamma     CostDist = "gamma"
	CostLogNormal CostDist = "lnorm"
)

// MechanismFamily distinguishes missingness (selection) models from
// structural-value (hurdle) models.
type MechanismFamily string

const (
	FamilySelection MechanismFamily = "selection"
	FamilyHurdle    MechanismFamily = "hurdle"
)

// MechanismType is the declared mechanism label. MAR/MNAR belong to the
// selection family, SCAR/SAR to the hurdle family.
type MechanismType string

const (
	MAR  MechanismType = "MAR"
	MNAR MechanismType = "MNAR"
	SCAR MechanismType = "SCAR"
	SAR  MechanismType = "SAR"
)

// Family returns the mechanism family of a type label
func (t MechanismType) Family() (MechanismFamily, error) {
	switch t {
	case MAR, MNAR:
		return FamilySelection, nil
	case SCAR, SAR:
		return FamilyHurdle, nil
	}
	return "", core.NewMechanismMismatchError(fmt.Sprintf("unknown mechanism type %q", string(t)))
}

// Flags are the caller-supplied model selection switches: mechanism type,
// outcome distributions, and declared structural values.
type Flags struct {
	Type       MechanismType `json:"type"`
	EffectDist EffectDist    `json:"dist_e"`
	CostDist   CostDist      `json:"dist_c"`

	StructuralEffectValue *float64 `json:"se_value,omitempty"`
	StructuralCostValue   *float64 `json:"sc_value,omitempty"`
}

// Classifiers are the booleans the variant is resolved from. They are a
// pure function of descriptor shapes and declared structural values, never
// of the sampled data.
type Classifiers struct {
	EffectModelCovariates     bool `json:"effect_model_covariates"`
	CostModelCovariates       bool `json:"cost_model_covariates"`
	EffectMechanismCovariates bool `json:"effect_mechanism_covariates"`
	CostMechanismCovariates   bool `json:"cost_mechanism_covariates"`
	Joint                     bool `json:"joint"`
	StructuralEffect          bool `json:"structural_effect"`
	StructuralCost            bool `json:"structural_cost"`
}

// Variant is the fully resolved model variant: mechanism family and type,
// outcome distribution pair, and shape classifiers. Exactly one variant is
// determined per run; ambiguity is a defect, never a runtime condition.
type Variant struct {
	Family      MechanismFamily `json:"family"`
	Type        MechanismType   `json:"type"`
	EffectDist  EffectDist      `json:"dist_e"`
	CostDist    CostDist        `json:"dist_c"`
	Classifiers Classifiers     `json:"classifiers"`
}

// VariantTag is one entry of the closed variant tag set.
type VariantTag string

const (
	TagSelIndMCARShaped VariantTag = "selection_independent_mcar_shaped"
	TagSelIndMAREffect  VariantTag = "selection_independent_mar_effect"
	TagSelIndMARCost    VariantTag = "selection_independent_mar_cost"
	TagSelIndMARBoth    VariantTag = "selection_independent_mar_both"

	TagSelJointMCARShaped VariantTag = "selection_joint_mcar_shaped"
	TagSelJointMAREffect  VariantTag = "selection_joint_mar_effect"
	TagSelJointMARCost    VariantTag = "selection_joint_mar_cost"
	TagSelJointMARBoth    VariantTag = "selection_joint_mar_both"

	TagHurdleIndSCARShaped VariantTag = "hurdle_independent_scar_shaped"
	TagHurdleIndSAREffect  VariantTag = "hurdle_independent_sar_effect"
	TagHurdleIndSARCost    VariantTag = "hurdle_independent_sar_cost"
	TagHurdleIndSARBoth    VariantTag = "hurdle_independent_sar_both"

	TagHurdleJointSCARShaped VariantTag = "hurdle_joint_scar_shaped"
	TagHurdleJointSAREffect  VariantTag = "hurdle_joint_sar_effect"
	TagHurdleJointSARCost    VariantTag = "hurdle_joint_sar_cost"
	TagHurdleJointSARBoth    VariantTag = "hurdle_joint_sar_both"
)

// mechanismCoverage classifies which outcomes have a non-trivial
// (covariate-bearing) mechanism descriptor.
type mechanismCoverage int

const (
	coverageNone mechanismCoverage = iota
	coverageEffect
	coverageCost
	coverageBoth
)

func coverage(effect, cost bool) mechanismCoverage {
	switch {
	case effect && cost:
		return coverageBoth
	case effect:
		return coverageEffect
	case cost:
		return coverageCost
	}
	return coverageNone
}

// tagKey is the tuple the tag table is keyed on.
type tagKey struct {
	family   MechanismFamily
	joint    bool
	coverage mechanismCoverage
}

// tagTable is the total, non-overlapping case table mapping classifier
// tuples to variant tags. All 16 tuples are present; variant_test.go
// asserts totality and uniqueness so an unhandled combination cannot slip
// through silently.
var tagTable = map[tagKey]VariantTag{
	{FamilySelection, false, coverageNone}:   TagSelIndMCARShaped,
	{FamilySelection, false, coverageEffect}: TagSelIndMAREffect,
	{FamilySelection, false, coverageCost}:   TagSelIndMARCost,
	{FamilySelection, false, coverageBoth}:   TagSelIndMARBoth,
	{FamilySelection, true, coverageNone}:    TagSelJointMCARShaped,
	{FamilySelection, true, coverageEffect}:  TagSelJointMAREffect,
	{FamilySelection, true, coverageCost}:    TagSelJointMARCost,
	{FamilySelection, true, coverageBoth}:    TagSelJointMARBoth,
	{FamilyHurdle, false, coverageNone}:      TagHurdleIndSCARShaped,
	{FamilyHurdle, false, coverageEffect}:    TagHurdleIndSAREffect,
	{FamilyHurdle, false, coverageCost}:      TagHurdleIndSARCost,
	{FamilyHurdle, false, coverageBoth}:      TagHurdleIndSARBoth,
	{FamilyHurdle, true, coverageNone}:       TagHurdleJointSCARShaped,
	{FamilyHurdle, true, coverageEffect}:     TagHurdleJointSAREffect,
	{FamilyHurdle, true, coverageCost}:       TagHurdleJointSARCost,
	{FamilyHurdle, true, coverageBoth}:       TagHurdleJointSARBoth,
}

// TagInfo describes one entry of the closed tag set.
type TagInfo struct {
	Tag    VariantTag      `json:"tag"`
	Family MechanismFamily `json:"family"`
	Joint  bool            `json:"joint"`
}

// TagCatalogue returns every variant tag with its family and joint
// classifier, in stable order.
func TagCatalogue() []TagInfo {
	out := make([]TagInfo, 0, len(tagTable))
	for _, family := range []MechanismFamily{FamilySelection, FamilyHurdle} {
		for _, joint := range []bool{false, true} {
			for cov := coverageNone; cov <= coverageBoth; cov++ {
				out = append(out, TagInfo{
					Tag:    tagTable[tagKey{family, joint, cov}],
					Family: family,
					Joint:  joint,
				})
			}
		}
	}
	return out
}

// Tag returns the variant's entry in the closed tag set.
func (v Variant) Tag() VariantTag {
	key := tagKey{
		family: v.Family,
		joint:  v.Classifiers.Joint,
		coverage: coverage(
			v.Classifiers.EffectMechanismCovariates,
			v.Classifiers.CostMechanismCovariates,
		),
	}
	return tagTable[key]
}

// validDistributions is the fixed outcome distribution catalogue.
func validateDistributions(f Flags) error {
	switch f.EffectDist {
	case EffectNormal, EffectBeta:
	default:
		return core.NewSchemaError(fmt.Sprintf("unknown effect distribution %q", string(f.EffectDist)))
	}
	switch f.CostDist {
	case CostNormal, CostGamma, CostLogNormal:
	default:
		return core.NewSchemaError(fmt.Sprintf("unknown cost distribution %q", string(f.CostDist)))
	}
	return nil
}

// Resolve deterministically maps the descriptor shapes and flags to exactly
// one model variant. The classifiers depend only on column counts and
// declared structural values; two calls with identical descriptors and
// flags always resolve identically, whatever the outcome data look like.
//
// Declared mechanism labels must agree with descriptor shape: SCAR with a
// covariate-bearing structural descriptor, SAR with an intercept-only one,
// a structural value declared under a selection type, a covariate-bearing
// missingness descriptor under a hurdle type, or a covariate-bearing
// structural descriptor without a declared structural value are all
// mechanism mismatches. The inactive family's descriptors must stay
// intercept-only; a shape that contradicts the declared label fails rather
// than being ignored. MAR and MNAR accept either shape: an intercept-only
// missingness descriptor is simply the completely-at-random-shaped case,
// and the MNAR departure term is on the outcome itself, not a covariate.
func Resolve(set DescriptorSet, flags Flags) (Variant, error) {
	family, err := flags.Type.Family()
	if err != nil {
		return Variant{}, err
	}
	if err := validateDistributions(flags); err != nil {
		return Variant{}, err
	}

	cls := Classifiers{
		EffectModelCovariates: hasRegressionCovariates(set.Effect),
		CostModelCovariates:   hasRegressionCovariates(set.Cost),
		Joint:                 set.Cost.Includes(ResponseEffect),
		StructuralEffect:      flags.StructuralEffectValue != nil,
		StructuralCost:        flags.StructuralCostValue != nil,
	}

	switch family {
	case FamilySelection:
		if cls.StructuralEffect || cls.StructuralCost {
			return Variant{}, core.NewMechanismMismatchError(
				fmt.Sprintf("structural value declared under selection type %q", string(flags.Type)))
		}
		if !set.StructuralEffect.InterceptOnly() || !set.StructuralCost.InterceptOnly() {
			return Variant{}, core.NewMechanismMismatchError(
				fmt.Sprintf("structural descriptor has covariates under selection type %q", string(flags.Type)))
		}
		cls.EffectMechanismCovariates = hasRegressionCovariates(set.MissingEffect)
		cls.CostMechanismCovariates = hasRegressionCovariates(set.MissingCost)

	case FamilyHurdle:
		if !set.MissingEffect.InterceptOnly() || !set.MissingCost.InterceptOnly() {
			return Variant{}, core.NewMechanismMismatchError(
				fmt.Sprintf("missingness descriptor has covariates under hurdle type %q", string(flags.Type)))
		}
		if !cls.StructuralEffect && !cls.StructuralCost {
			return Variant{}, core.NewMechanismMismatchError(
				fmt.Sprintf("no structural value declared under hurdle type %q", string(flags.Type)))
		}
		if err := checkHurdleShape(flags, set, cls); err != nil {
			return Variant{}, err
		}
		if err := checkStructuralSupport(flags); err != nil {
			return Variant{}, err
		}
		cls.EffectMechanismCovariates = cls.StructuralEffect && hasRegressionCovariates(set.StructuralEffect)
		cls.CostMechanismCovariates = cls.StructuralCost && hasRegressionCovariates(set.StructuralCost)
	}

	return Variant{
		Family:      family,
		Type:        flags.Type,
		EffectDist:  flags.EffectDist,
		CostDist:    flags.CostDist,
		Classifiers: cls,
	}, nil
}

// hasRegressionCovariates reports whether a descriptor has covariates that
// actually enter the design matrix. The effect response inside the cost
// covariate list expresses joint dependence and is handled by the model
// code, not the matrix, so it does not count here. The classifiers and
// BuildDesignMatrix share this notion, so a resolved variant never claims a
// matrix column that was not built.
func hasRegressionCovariates(d Descriptor) bool {
	for _, c := range d.Covariates {
		if c == ResponseEffect || c == ResponseCost {
			continue
		}
		return true
	}
	return false
}

func checkHurdleShape(flags Flags, set DescriptorSet, cls Classifiers) error {
	check := func(declared bool, d Descriptor, outcome string) error {
		switch flags.Type {
		case SCAR:
			if declared && !d.InterceptOnly() {
				return core.NewMechanismMismatchError(
					fmt.Sprintf("SCAR declared but structural %s descriptor has covariates", outcome))
			}
		case SAR:
			if declared && d.InterceptOnly() {
				return core.NewMechanismMismatchError(
					fmt.Sprintf("SAR declared but structural %s descriptor is intercept-only", outcome))
			}
		}
		if !declared && !d.InterceptOnly() {
			return core.NewMechanismMismatchError(
				fmt.Sprintf("structural %s descriptor has covariates but no structural value is declared", outcome))
		}
		return nil
	}
	if err := check(cls.StructuralEffect, set.StructuralEffect, "effect"); err != nil {
		return err
	}
	return check(cls.StructuralCost, set.StructuralCost, "cost")
}

// checkStructuralSupport enforces that a declared structural value sits on
// the boundary of the chosen distribution's support, where the hurdle spike
// belongs: gamma and log-normal costs hurdle at 0, a beta effect hurdles at
// 0 or 1. Normal outcomes have unbounded support and accept any value.
func checkStructuralSupport(flags Flags) error {
	if v := flags.StructuralCostValue; v != nil {
		switch flags.CostDist {
		case CostGamma, CostLogNormal:
			if *v != 0 {
				return core.NewMechanismMismatchError(fmt.Sprintf(
					"structural cost value must be 0 for %s costs, got %g", string(flags.CostDist), *v))
			}
		}
	}
	if v := flags.StructuralEffectValue; v != nil {
		if flags.EffectDist == EffectBeta && *v != 0 && *v != 1 {
			return core.NewMechanismMismatchError(fmt.Sprintf(
				"structural effect value must be 0 or 1 for beta effects, got %g", *v))
		}
	}
	return nil
}
