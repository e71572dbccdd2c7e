package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ConfigID ID
	RunID    ID
)

func (id ConfigID) String() string { return ID(id).String() }
func (id RunID) String() string    { return ID(id).String() }

// ParseConfigID parses a string into ConfigID
func ParseConfigID(s string) (ConfigID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("config ID cannot be empty")
	}
	return ConfigID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}
