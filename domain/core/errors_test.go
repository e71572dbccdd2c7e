package core

import (
	"errors"
	"testing"
)

// TestErrorTaxonomy tests that each constructor wraps its sentinel and that
// the helpers distinguish the six categories.
func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{"schema", NewSchemaError("bad"), ErrSchema, IsSchemaError},
		{"missing column", NewMissingColumnError("c"), ErrSchema, IsSchemaError},
		{"non-numeric column", NewNonNumericColumnError("age"), ErrSchema, IsSchemaError},
		{"missing covariate", NewMissingCovariateError("age", 3), ErrSchema, IsSchemaError},
		{"descriptor role", NewDescriptorRoleError("effect", "bad response"), ErrSchema, IsSchemaError},
		{"arm coding", NewArmCodingError([]string{"A", "B"}), ErrArmCoding, IsArmCodingError},
		{"unknown covariate", NewUnknownCovariateError("cost", "income"), ErrUnknownCovariate, IsUnknownCovariateError},
		{"mechanism mismatch", NewMechanismMismatchError("bad"), ErrMechanismMismatch, IsMechanismMismatchError},
		{"prior binding", NewPriorBindingError("theta.prior", "bad"), ErrPriorBinding, IsPriorBindingError},
		{"indicator override", NewIndicatorOverrideError("c", "bad"), ErrIndicatorOverride, IsIndicatorOverrideError},
	}

	for _, test := range tests {
		if !errors.Is(test.err, test.sentinel) {
			t.Errorf("%s: expected error to wrap its sentinel", test.name)
		}
		if !test.check(test.err) {
			t.Errorf("%s: expected category helper to match", test.name)
		}
	}
}

// TestErrorCategoriesAreDisjoint tests that non-schema categories do not
// satisfy each other's helpers.
func TestErrorCategoriesAreDisjoint(t *testing.T) {
	if IsSchemaError(NewArmCodingError([]string{"A"})) {
		t.Error("arm coding error should not be a schema error")
	}
	if IsPriorBindingError(NewMechanismMismatchError("bad")) {
		t.Error("mechanism mismatch should not be a prior binding error")
	}
	if IsIndicatorOverrideError(NewUnknownCovariateError("cost", "x")) {
		t.Error("unknown covariate should not be an indicator override error")
	}
}
