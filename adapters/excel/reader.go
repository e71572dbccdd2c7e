package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"costmix/domain/core"
	"costmix/domain/trial"
	"costmix/internal"
	"costmix/ports"
)

// DataReader loads a trial dataset from an .xlsx or .csv file. The first
// row is the header; the reserved columns e, c and t may appear at any
// position and every other column becomes a covariate. Empty outcome cells
// become missing values; empty cells elsewhere are carried through as
// missing and rejected later by the schema validator, so file readers stay
// dumb and every source is validated by the same rules.
type DataReader struct {
	log *internal.Logger
}

// NewDataReader creates a reader for xlsx and csv trial data files
func NewDataReader(log *internal.Logger) ports.DatasetReaderPort {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &DataReader{log: log}
}

// Read loads the dataset at path
func (r *DataReader) Read(ctx context.Context, path string) (*trial.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", path)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = r.readCSV(path)
	case ".xlsx":
		rows, err = r.readExcel(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, core.NewSchemaError("data file must have a header row and at least one data row")
	}

	r.log.Debug("read %d data rows from %s", len(rows)-1, path)
	return buildDataset(rows[0], rows[1:])
}

func (r *DataReader) readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func buildDataset(header []string, rows [][]string) (*trial.Dataset, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{trial.FieldEffect, trial.FieldCost, trial.FieldArm} {
		if _, ok := cols[required]; !ok {
			return nil, core.NewMissingColumnError(required)
		}
	}

	ds := &trial.Dataset{Covariates: make(map[string]trial.Values)}
	for _, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case trial.FieldEffect, trial.FieldCost, trial.FieldArm, "":
		default:
			ds.CovariateNames = append(ds.CovariateNames, name)
			ds.Covariates[name] = make(trial.Values, 0, len(rows))
		}
	}

	cell := func(row []string, idx int) string {
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for n, row := range rows {
		ds.Arm = append(ds.Arm, cell(row, cols[trial.FieldArm]))

		for _, outcome := range []string{trial.FieldEffect, trial.FieldCost} {
			v, err := parseCell(cell(row, cols[outcome]), outcome, n)
			if err != nil {
				return nil, err
			}
			if outcome == trial.FieldEffect {
				ds.Effect = append(ds.Effect, v)
			} else {
				ds.Cost = append(ds.Cost, v)
			}
		}

		for _, name := range ds.CovariateNames {
			v, err := parseCell(cell(row, cols[name]), name, n)
			if err != nil {
				return nil, err
			}
			ds.Covariates[name] = append(ds.Covariates[name], v)
		}
	}
	return ds, nil
}

// parseCell converts one cell to an optional value. "NA" is accepted as a
// missing marker alongside the empty cell.
func parseCell(s, column string, row int) (trial.Value, error) {
	if s == "" || s == "NA" {
		return trial.None(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return trial.Value{}, core.NewNonNumericColumnError(fmt.Sprintf("%s (row %d: %q)", column, row, s))
	}
	return trial.Some(f), nil
}
