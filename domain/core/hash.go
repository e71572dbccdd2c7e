package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// DatasetFingerprint identifies the shape of a prepared dataset (sizes and
// missingness pattern), used for reproducibility checks on stored configs.
type DatasetFingerprint Hash

func NewDatasetFingerprint(data []byte) DatasetFingerprint {
	return DatasetFingerprint(NewHash(data))
}

func (h DatasetFingerprint) String() string { return Hash(h).String() }
