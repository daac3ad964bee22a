package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks usage errors: unknown selectors, malformed
	// timestamps and records that break their invariants
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReferenceNotFound marks an id that does not resolve. It is soft:
	// aggregation substitutes a sentinel label and carries on.
	ErrReferenceNotFound = errors.New("reference not found")
)

// ReferenceKind names the entity a dangling reference points at
type ReferenceKind string

const (
	RefQueue    ReferenceKind = "queue"
	RefOperator ReferenceKind = "operator"
	RefGroup    ReferenceKind = "group"
)

// ReferenceError describes one unresolved reference
type ReferenceError struct {
	Kind     ReferenceKind `json:"kind"`
	ID       string        `json:"id"`
	RecordID string        `json:"recordId,omitempty"`
}

func (e ReferenceError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("%s %q referenced by %s: %v", e.Kind, e.ID, e.RecordID, ErrReferenceNotFound)
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.ID, ErrReferenceNotFound)
}

// Is lets errors.Is match ErrReferenceNotFound
func (e ReferenceError) Is(target error) bool {
	return target == ErrReferenceNotFound
}
