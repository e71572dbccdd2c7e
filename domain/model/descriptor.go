package model

import (
	"fmt"

	"costmix/domain/core"
	"costmix/domain/trial"
)

// Role identifies which regression component a descriptor parameterises.
type Role string

const (
	RoleEffect           Role = "effect"
	RoleCost             Role = "cost"
	RoleMissingEffect    Role = "missing-effect"
	RoleMissingCost      Role = "missing-cost"
	RoleStructuralEffect Role = "structural-effect"
	RoleStructuralCost   Role = "structural-cost"
)

// Reserved response names, one per role. These are fixed by contract and a
// descriptor whose response does not match its role is rejected outright;
// there is no runtime formula parsing anywhere.
const (
	ResponseEffect           = trial.FieldEffect
	ResponseCost             = trial.FieldCost
	ResponseMissingEffect    = "me"
	ResponseMissingCost      = "mc"
	ResponseStructuralEffect = "se"
	ResponseStructuralCost   = "sc"
)

// Descriptor is a statically validated model descriptor: a response name
// plus an ordered covariate list. An intercept-only descriptor has an empty
// covariate list.
type Descriptor struct {
	Response   string   `json:"response"`
	Covariates []string `json:"covariates"`
}

// InterceptOnly reports whether the descriptor declares no covariates
func (d Descriptor) InterceptOnly() bool {
	return len(d.Covariates) == 0
}

// Includes reports whether a name appears in the covariate list
func (d Descriptor) Includes(name string) bool {
	for _, c := range d.Covariates {
		if c == name {
			return true
		}
	}
	return false
}

// DescriptorSet carries the six role-bound descriptors of one model run.
type DescriptorSet struct {
	Effect           Descriptor `json:"effect"`
	Cost             Descriptor `json:"cost"`
	MissingEffect    Descriptor `json:"missing_effect"`
	MissingCost      Descriptor `json:"missing_cost"`
	StructuralEffect Descriptor `json:"structural_effect"`
	StructuralCost   Descriptor `json:"structural_cost"`
}

// ByRole returns the descriptor bound to a role
func (s DescriptorSet) ByRole(role Role) Descriptor {
	switch role {
	case RoleEffect:
		return s.Effect
	case RoleCost:
		return s.Cost
	case RoleMissingEffect:
		return s.MissingEffect
	case RoleMissingCost:
		return s.MissingCost
	case RoleStructuralEffect:
		return s.StructuralEffect
	case RoleStructuralCost:
		return s.StructuralCost
	}
	return Descriptor{}
}

// expectedResponse maps each role to its reserved response name.
var expectedResponse = map[Role]string{
	RoleEffect:           ResponseEffect,
	RoleCost:             ResponseCost,
	RoleMissingEffect:    ResponseMissingEffect,
	RoleMissingCost:      ResponseMissingCost,
	RoleStructuralEffect: ResponseStructuralEffect,
	RoleStructuralCost:   ResponseStructuralCost,
}

// reservedResponses are names that may never appear as ordinary covariates.
// The outcome names are handled separately: cost may include the effect
// response to express joint dependence.
var reservedResponses = map[string]bool{
	ResponseMissingEffect:    true,
	ResponseMissingCost:      true,
	ResponseStructuralEffect: true,
	ResponseStructuralCost:   true,
}

// Validate checks descriptor role contracts:
//
//   - every response name must match its reserved role;
//   - the treatment-arm field never appears as a covariate anywhere (arms
//     are handled by splitting, not regression);
//   - no descriptor re-includes its own response;
//   - the effect model may never include the cost response, while the cost
//     model may include the effect response (joint dependence);
//   - indicator response names never appear as covariates;
//   - outcome responses never appear as mechanism covariates: outside the
//     cost model they carry no joint-dependence meaning and would not become
//     matrix columns, so they are rejected rather than ignored.
//
// Covariate existence against the dataset is checked later by the design
// matrix builder, which owns UnknownCovariateError.
func (s DescriptorSet) Validate() error {
	for role, want := range expectedResponse {
		d := s.ByRole(role)
		if d.Response != want {
			return core.NewDescriptorRoleError(string(role),
				fmt.Sprintf("response must be %q, got %q", want, d.Response))
		}
		for _, cov := range d.Covariates {
			if cov == trial.FieldArm {
				return core.NewDescriptorRoleError(string(role),
					fmt.Sprintf("treatment arm field %q may not be a covariate", trial.FieldArm))
			}
			if cov == d.Response {
				return core.NewDescriptorRoleError(string(role),
					fmt.Sprintf("response %q re-included as covariate", cov))
			}
			if reservedResponses[cov] {
				return core.NewDescriptorRoleError(string(role),
					fmt.Sprintf("reserved response %q may not be a covariate", cov))
			}
			if role != RoleEffect && role != RoleCost && (cov == ResponseEffect || cov == ResponseCost) {
				return core.NewDescriptorRoleError(string(role),
					fmt.Sprintf("outcome response %q may not be a mechanism covariate", cov))
			}
		}
	}
	if s.Effect.Includes(ResponseCost) {
		return core.NewDescriptorRoleError(string(RoleEffect),
			fmt.Sprintf("effect model may not include the cost response %q", ResponseCost))
	}
	return nil
}
