package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions.
//
// Every failure in the preparation pipeline is a deterministic input-shape
// defect, so all of these are surfaced synchronously and never retried.
var (
	// Schema errors
	ErrSchema           = errors.New("dataset schema violation")
	ErrMissingColumn    = fmt.Errorf("%w: required column absent", ErrSchema)
	ErrNonNumericColumn = fmt.Errorf("%w: column is not numeric", ErrSchema)
	ErrMissingCovariate = fmt.Errorf("%w: covariate column contains missing values", ErrSchema)
	ErrDescriptorRole   = fmt.Errorf("%w: descriptor role violation", ErrSchema)
	ErrNoMissingness    = fmt.Errorf("%w: no missing outcome values in dataset", ErrSchema)

	// Arm coding errors
	ErrArmCoding = errors.New("treatment arm coding invalid")

	// Covariate resolution errors
	ErrUnknownCovariate = errors.New("covariate not present in dataset")

	// Mechanism declaration errors
	ErrMechanismMismatch = errors.New("mechanism label disagrees with descriptor shape")

	// Prior binding errors
	ErrPriorBinding = errors.New("prior override binding invalid")

	// Indicator override errors
	ErrIndicatorOverride = errors.New("indicator override vector invalid")
)

// Error constructors with context

func NewSchemaError(reason string) error {
	return fmt.Errorf("%w: %s", ErrSchema, reason)
}

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, column)
}

func NewNonNumericColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrNonNumericColumn, column)
}

func NewMissingCovariateError(column string, row int) error {
	return fmt.Errorf("%w: %q at row %d", ErrMissingCovariate, column, row)
}

func NewDescriptorRoleError(role string, reason string) error {
	return fmt.Errorf("%w: %s descriptor: %s", ErrDescriptorRole, role, reason)
}

func NewArmCodingError(levels []string) error {
	return fmt.Errorf("%w: want exactly levels [1 2], got %v", ErrArmCoding, levels)
}

func NewUnknownCovariateError(role string, covariate string) error {
	return fmt.Errorf("%w: %s descriptor references %q", ErrUnknownCovariate, role, covariate)
}

func NewMechanismMismatchError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMechanismMismatch, reason)
}

func NewPriorBindingError(name string, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrPriorBinding, name, reason)
}

func NewIndicatorOverrideError(outcome string, reason string) error {
	return fmt.Errorf("%w: %s outcome: %s", ErrIndicatorOverride, outcome, reason)
}

// Error checking helpers

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsArmCodingError(err error) bool {
	return errors.Is(err, ErrArmCoding)
}

func IsUnknownCovariateError(err error) bool {
	return errors.Is(err, ErrUnknownCovariate)
}

func IsMechanismMismatchError(err error) bool {
	return errors.Is(err, ErrMechanismMismatch)
}

func IsPriorBindingError(err error) bool {
	return errors.Is(err, ErrPriorBinding)
}

func IsIndicatorOverrideError(err error) bool {
	return errors.Is(err, ErrIndicatorOverride)
}
