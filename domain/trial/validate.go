package trial

import (
	"fmt"

	"costmix/domain/core"
)

// Validate checks the raw dataset against the modelling contract: reserved
// columns present and consistently sized, fully observed covariates and arm
// labels, exactly two arm levels, and at least one missing outcome entry.
// A dataset with no missingness at all is out of scope for this subsystem
// and rejected rather than silently passed through.
//
// Pure predicate, fail fast: the first violation found is returned and
// nothing is modified.
func (d *Dataset) Validate() error {
	n := d.N()
	if n == 0 {
		return core.NewSchemaError("dataset has no rows")
	}
	if d.Effect == nil {
		return core.NewMissingColumnError(FieldEffect)
	}
	if d.Cost == nil {
		return core.NewMissingColumnError(FieldCost)
	}
	if len(d.Effect) != n {
		return core.NewSchemaError(fmt.Sprintf("column %q has %d rows, arm column has %d", FieldEffect, len(d.Effect), n))
	}
	if len(d.Cost) != n {
		return core.NewSchemaError(fmt.Sprintf("column %q has %d rows, arm column has %d", FieldCost, len(d.Cost), n))
	}

	for i, code := range d.Arm {
		if code == "" {
			return core.NewSchemaError(fmt.Sprintf("column %q has an empty entry at row %d", FieldArm, i))
		}
	}
	levels := armLevels(d.Arm)
	if len(levels) != 2 {
		return core.NewArmCodingError(levels)
	}

	declared := make(map[string]bool, len(d.CovariateNames))
	for _, name := range d.CovariateNames {
		declared[name] = true
	}
	for name := range d.Covariates {
		if !declared[name] {
			return core.NewSchemaError(fmt.Sprintf("covariate column %q is not declared in the column order", name))
		}
	}

	for _, name := range d.CovariateNames {
		col, ok := d.Covariates[name]
		if !ok {
			return core.NewMissingColumnError(name)
		}
		if len(col) != n {
			return core.NewSchemaError(fmt.Sprintf("covariate %q has %d rows, arm column has %d", name, len(col), n))
		}
		for i, v := range col {
			if v.Missing() {
				return core.NewMissingCovariateError(name, i)
			}
		}
	}

	if d.Effect.CountMissing() == 0 && d.Cost.CountMissing() == 0 {
		return core.ErrNoMissingness
	}
	return nil
}

// armLevels returns the distinct arm codes in first-appearance order.
func armLevels(codes []string) []string {
	seen := make(map[string]bool, 2)
	var levels []string
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			levels = append(levels, c)
		}
	}
	return levels
}
