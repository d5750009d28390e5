package shared

import (
	"fmt"
	"strings"
)

// ActorID is a value object identifying the user behind an operation
type ActorID struct {
	value string
}

// SystemActor is used when no authenticated user is attached to an operation
var SystemActor = ActorID{value: "system"}

// NewActorID creates a new ActorID value object
func NewActorID(id string) (ActorID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ActorID{}, fmt.Errorf("actor id must not be empty")
	}
	return ActorID{value: id}, nil
}

// MustNewActorID creates a new ActorID, panicking if invalid
// Use this only when the ID is known to be valid (e.g., from database)
func MustNewActorID(id string) ActorID {
	actor, err := NewActorID(id)
	if err != nil {
		panic(err)
	}
	return actor
}

// Value returns the raw identifier
func (a ActorID) Value() string {
	return a.value
}

// String returns a string representation of the ActorID
func (a ActorID) String() string {
	return a.value
}

// Equals checks if two ActorIDs are equal
func (a ActorID) Equals(other ActorID) bool {
	return a.value == other.value
}

// IsZero checks if the ActorID is the zero value (uninitialized)
func (a ActorID) IsZero() bool {
	return a.value == ""
}
