package app

import (
	"context"

	"costmix/domain/model"
	"costmix/domain/trial"
	"costmix/internal"
)

// PrepRequest is one full model-preparation request: the raw dataset, the
// six role-bound descriptors, the model selection flags, optional indicator
// overrides, and optional prior overrides.
type PrepRequest struct {
	Dataset     *trial.Dataset
	Descriptors model.DescriptorSet
	Flags       model.Flags

	EffectStructuralOverride trial.Values
	CostStructuralOverride   trial.Values

	Priors []model.PriorOverride
}

// PrepService runs the preparation pipeline: schema validation, arm
// splitting, design matrix and indicator construction, variant resolution,
// and config assembly. Every stage is a pure function of its inputs; the
// service just sequences them and logs.
type PrepService struct {
	log *internal.Logger
}

// NewPrepService creates a new preparation service
func NewPrepService(log *internal.Logger) *PrepService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &PrepService{log: log}
}

// Build runs the full pipeline and returns the assembled Config, or the
// first typed error encountered. No partial config is ever returned.
func (s *PrepService) Build(ctx context.Context, req PrepRequest) (*model.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := req.Dataset.Validate(); err != nil {
		return nil, err
	}
	if err := req.Descriptors.Validate(); err != nil {
		return nil, err
	}

	variant, err := model.Resolve(req.Descriptors, req.Flags)
	if err != nil {
		return nil, err
	}

	control, intervention, err := trial.SplitArms(req.Dataset)
	if err != nil {
		return nil, err
	}
	s.log.Debug("split arms: control n=%d, intervention n=%d", control.N, intervention.N)

	designs, err := s.buildDesigns(req.Dataset, variant, req.Descriptors, control, intervention)
	if err != nil {
		return nil, err
	}

	spec := trial.StructuralSpec{
		EffectValue:    req.Flags.StructuralEffectValue,
		CostValue:      req.Flags.StructuralCostValue,
		EffectOverride: req.EffectStructuralOverride,
		CostOverride:   req.CostStructuralOverride,
	}
	n := req.Dataset.N()
	controlInd, err := trial.BuildIndicators(control, n, spec)
	if err != nil {
		return nil, err
	}
	interventionInd, err := trial.BuildIndicators(intervention, n, spec)
	if err != nil {
		return nil, err
	}

	cfg, err := model.Assemble(model.AssembleInput{
		Variant:                variant,
		Control:                control,
		Intervention:           intervention,
		Designs:                designs,
		ControlIndicators:      controlInd,
		InterventionIndicators: interventionInd,
		Overrides:              req.Priors,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("assembled config %s variant=%s", cfg.ID, cfg.Tag)
	return cfg, nil
}

// buildDesigns builds the outcome-model matrices plus the mechanism-model
// matrices of the active family, per arm. The inactive family's descriptors
// are intercept-only by contract (enforced during variant resolution) and
// contribute nothing to the configuration.
func (s *PrepService) buildDesigns(
	ds *trial.Dataset,
	variant model.Variant,
	set model.DescriptorSet,
	control, intervention *trial.ArmData,
) ([]*model.DesignMatrix, error) {
	roles := []model.Role{model.RoleEffect, model.RoleCost}
	if variant.Family == model.FamilySelection {
		roles = append(roles, model.RoleMissingEffect, model.RoleMissingCost)
	} else {
		if variant.Classifiers.StructuralEffect {
			roles = append(roles, model.RoleStructuralEffect)
		}
		if variant.Classifiers.StructuralCost {
			roles = append(roles, model.RoleStructuralCost)
		}
	}

	var designs []*model.DesignMatrix
	for _, role := range roles {
		for _, arm := range []*trial.ArmData{control, intervention} {
			dm, err := model.BuildDesignMatrix(ds, arm, role, set.ByRole(role))
			if err != nil {
				return nil, err
			}
			designs = append(designs, dm)
		}
	}
	return designs, nil
}
