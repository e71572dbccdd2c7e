package api

import (
	"costmix/domain/model"
	"costmix/domain/trial"
)

// BuildConfigRequest is the payload of POST /api/v1/configs: a raw dataset
// (missing entries encoded as JSON null), the six descriptors, the model
// flags, and optional prior and indicator overrides.
type BuildConfigRequest struct {
	Dataset     *trial.Dataset        `json:"dataset"`
	Descriptors model.DescriptorSet   `json:"descriptors"`
	Flags       model.Flags           `json:"flags"`
	Priors      []model.PriorOverride `json:"priors,omitempty"`

	EffectStructuralOverride trial.Values `json:"se_override,omitempty"`
	CostStructuralOverride   trial.Values `json:"sc_override,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// VariantInfo is one row of GET /api/v1/variants.
type VariantInfo struct {
	Tag    model.VariantTag      `json:"tag"`
	Family model.MechanismFamily `json:"family"`
	Joint  bool                  `json:"joint"`
}
