package trial

import (
	"encoding/json"
)

// Reserved column names in a trial dataset.
const (
	FieldEffect = "e"
	FieldCost   = "c"
	FieldArm    = "t"
)

// Arm identifies one of the two treatment groups.
type Arm int

const (
	Control Arm = iota + 1
	Intervention
)

// Arm level coding accepted in the raw dataset: "1" is Control, "2" is
// Intervention. Any other two-level coding is rejected by SplitArms.
const (
	ControlCode      = "1"
	InterventionCode = "2"
)

// String returns the arm name
func (a Arm) String() string {
	switch a {
	case Control:
		return "control"
	case Intervention:
		return "intervention"
	}
	return "unknown"
}

// Value is an optional numeric observation. A missing entry is carried as
// Valid == false end to end; there is no sentinel number anywhere in the
// pipeline that could leak into a mean or a matrix.
type Value struct {
	Float float64
	Valid bool
}

// Some returns an observed value
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// None returns a missing value
func None() Value {
	return Value{}
}

// Missing reports whether the value is absent
func (v Value) Missing() bool {
	return !v.Valid
}

// MarshalJSON encodes missing values as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON decodes null as a missing value
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Values is a column of optional observations
type Values []Value

// CountMissing returns the number of missing entries
func (vs Values) CountMissing() int {
	n := 0
	for _, v := range vs {
		if v.Missing() {
			n++
		}
	}
	return n
}

// CountObserved returns the number of observed entries
func (vs Values) CountObserved() int {
	return len(vs) - vs.CountMissing()
}

// Observed returns the observed entries in order
func (vs Values) Observed() []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if v.Valid {
			out = append(out, v.Float)
		}
	}
	return out
}

// Dataset is a raw two-arm trial dataset: rows are subjects, with the
// reserved effect/cost/arm columns plus zero or more covariate columns.
// Outcome columns may contain missing entries; covariate and arm columns
// may not (enforced by Validate, not by construction).
type Dataset struct {
	Effect Values `json:"e"`
	Cost   Values `json:"c"`
	Arm    []string `json:"t"`

	// CovariateNames preserves the column order of the source data.
	CovariateNames []string          `json:"covariate_names,omitempty"`
	Covariates     map[string]Values `json:"covariates,omitempty"`
}

// N returns the number of subjects
func (d *Dataset) N() int {
	return len(d.Arm)
}

// HasCovariate reports whether a covariate column exists
func (d *Dataset) HasCovariate(name string) bool {
	_, ok := d.Covariates[name]
	return ok
}

// ArmSummary holds complete-case summary statistics for one outcome in one arm.
type ArmSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"sd"`
}

// ArmData is the re-partition of the raw dataset for a single arm: the raw
// outcome vectors in original row order, the original row indices, and the
// observed/missing bookkeeping. It is produced once by SplitArms and never
// mutated afterwards.
type ArmData struct {
	Arm  Arm `json:"arm"`
	N    int `json:"n"`
	Rows []int `json:"rows"` // original dataset row indices, in order

	Effect Values `json:"e"`
	Cost   Values `json:"c"`

	EffectObserved int `json:"e_observed"`
	EffectMissing  int `json:"e_missing"`
	CostObserved   int `json:"c_observed"`
	CostMissing    int `json:"c_missing"`

	EffectSummary ArmSummary `json:"e_summary"`
	CostSummary   ArmSummary `json:"c_summary"`
}

// CompleteCasesEffect returns the complete-case count for the effect outcome
func (a *ArmData) CompleteCasesEffect() int {
	return a.N - a.EffectMissing
}

// CompleteCasesCost returns the complete-case count for the cost outcome
func (a *ArmData) CompleteCasesCost() int {
	return a.N - a.CostMissing
}
