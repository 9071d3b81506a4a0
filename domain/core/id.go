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
	// Falls back to v4 if v7 is not available
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
	ReportID     ID
	SectionID    string
	QuestionID   string
	CredentialID ID
	SessionID    ID
)

func (id ReportID) String() string     { return ID(id).String() }
func (id SectionID) String() string    { return string(id) }
func (id QuestionID) String() string   { return string(id) }
func (id CredentialID) String() string { return ID(id).String() }
func (id SessionID) String() string    { return ID(id).String() }

// ParseReportID parses a string into ReportID
func ParseReportID(s string) (ReportID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("report ID cannot be empty")
	}
	return ReportID(s), nil
}

// ParseCredentialID parses a string into CredentialID
func ParseCredentialID(s string) (CredentialID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("credential ID cannot be empty")
	}
	return CredentialID(s), nil
}
