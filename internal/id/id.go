// Package id generates prefixed unique identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// New creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "rep-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and more compact than UUIDs (21 characters
// vs 36) while keeping comparable collision resistance.
func New(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustNew is like New but panics if ID generation fails.
// Only use where missing system entropy should crash the program.
func MustNew(prefix string) string {
	id, err := New(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
