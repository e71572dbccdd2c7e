package model

import (
	"encoding/json"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"costmix/domain/core"
	"costmix/domain/trial"
)

// InterceptColumn is the column label of the leading intercept column.
const InterceptColumn = "(Intercept)"

// DesignMatrix is the numeric regression matrix for one descriptor in one
// arm: an intercept column of ones followed by one column per declared
// covariate, in declared order. OffsetMeans carries the arm-specific
// centering values the inference engine uses for its offset
// parameterisation: 1 for the intercept, the arm sample mean for a
// continuous covariate, and a fixed 1 for a binary-coded covariate
// regardless of the observed 0/1 proportion. The binary rule is a
// contractual invariant: it keeps the regression offset interpretable as a
// prevalence rather than an arbitrary average.
type DesignMatrix struct {
	Role    Role
	Arm     trial.Arm
	Columns []string
	X       *mat.Dense

	OffsetMeans []float64
}

// Rows returns the number of rows (arm size)
func (m *DesignMatrix) Rows() int {
	r, _ := m.X.Dims()
	return r
}

// Cols returns the number of columns (intercept + covariates)
func (m *DesignMatrix) Cols() int {
	_, c := m.X.Dims()
	return c
}

// designMatrixJSON is the persisted wire form of a design matrix.
type designMatrixJSON struct {
	Role        Role        `json:"role"`
	Arm         trial.Arm   `json:"arm"`
	Columns     []string    `json:"columns"`
	Data        [][]float64 `json:"data"`
	OffsetMeans []float64   `json:"offset_means"`
}

// MarshalJSON serializes the matrix row-major
func (m *DesignMatrix) MarshalJSON() ([]byte, error) {
	r, c := m.X.Dims()
	data := make([][]float64, r)
	for i := 0; i < r; i++ {
		data[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			data[i][j] = m.X.At(i, j)
		}
	}
	return json.Marshal(designMatrixJSON{
		Role:        m.Role,
		Arm:         m.Arm,
		Columns:     m.Columns,
		Data:        data,
		OffsetMeans: m.OffsetMeans,
	})
}

// UnmarshalJSON restores a matrix from its wire form
func (m *DesignMatrix) UnmarshalJSON(data []byte) error {
	var w designMatrixJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rows := len(w.Data)
	cols := len(w.Columns)
	x := mat.NewDense(max(rows, 1), max(cols, 1), nil)
	if rows > 0 && cols > 0 {
		x = mat.NewDense(rows, cols, nil)
		for i, row := range w.Data {
			for j, v := range row {
				x.Set(i, j, v)
			}
		}
	}
	m.Role = w.Role
	m.Arm = w.Arm
	m.Columns = w.Columns
	m.X = x
	m.OffsetMeans = w.OffsetMeans
	return nil
}

// BuildDesignMatrix constructs the design matrix for one descriptor in one
// arm. Covariate values are taken from the dataset restricted to the arm's
// rows; a descriptor referencing a column absent from the dataset fails
// with an unknown covariate error. The outcome response names inside a
// covariate list (cost-on-effect joint dependence) parameterise the model
// code, not the matrix, and are skipped here. An empty covariate list
// yields a single intercept column of ones, which is the downstream signal
// for the "no covariates" mechanism classification.
func BuildDesignMatrix(ds *trial.Dataset, arm *trial.ArmData, role Role, d Descriptor) (*DesignMatrix, error) {
	names := make([]string, 0, len(d.Covariates))
	for _, cov := range d.Covariates {
		if cov == ResponseEffect || cov == ResponseCost {
			continue
		}
		if !ds.HasCovariate(cov) {
			return nil, core.NewUnknownCovariateError(string(role), cov)
		}
		names = append(names, cov)
	}

	n := arm.N
	cols := 1 + len(names)
	x := mat.NewDense(n, cols, nil)
	means := make([]float64, cols)
	columns := make([]string, cols)

	columns[0] = InterceptColumn
	means[0] = 1
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}

	for j, name := range names {
		col := ds.Covariates[name]
		vals := make([]float64, n)
		for i, row := range arm.Rows {
			vals[i] = col[row].Float
			x.Set(i, j+1, vals[i])
		}
		columns[j+1] = name
		means[j+1] = offsetMean(vals)
	}

	return &DesignMatrix{
		Role:        role,
		Arm:         arm.Arm,
		Columns:     columns,
		X:           x,
		OffsetMeans: means,
	}, nil
}

// offsetMean computes the arm-specific centering value for one covariate
// column: 1 when the column is binary-coded within this arm (at most two
// distinct observed values), the sample mean otherwise. Detection is per
// arm, so a covariate that is binary in one arm only still gets 1 there.
func offsetMean(vals []float64) float64 {
	if isBinary(vals) {
		return 1
	}
	mean, err := stats.Mean(vals)
	if err != nil {
		return 1
	}
	return mean
}

func isBinary(vals []float64) bool {
	distinct := make(map[float64]struct{}, 3)
	for _, v := range vals {
		distinct[v] = struct{}{}
		if len(distinct) > 2 {
			return false
		}
	}
	return true
}
