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
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
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
	// NodeID identifies a classification node. The identifier encodes the
	// node's path through the split pipeline (e.g. "split_true_semdist_high").
	NodeID ID
	// GroupID identifies a threshold group. Natural groups use the shared
	// ancestor's node identifier; synthetic per-node groups use "node:<id>".
	GroupID ID
	// SessionID identifies one dashboard session.
	SessionID ID
)

// String conversions for domain IDs
func (id NodeID) String() string    { return ID(id).String() }
func (id GroupID) String() string   { return ID(id).String() }
func (id SessionID) String() string { return ID(id).String() }

// NewSessionID creates a fresh session identifier.
func NewSessionID() SessionID {
	return SessionID(NewID())
}

// ParseNodeID parses a string into NodeID
func ParseNodeID(s string) (NodeID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("node ID cannot be empty")
	}
	return NodeID(s), nil
}

// ParseGroupID parses a string into GroupID
func ParseGroupID(s string) (GroupID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("group ID cannot be empty")
	}
	return GroupID(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}
