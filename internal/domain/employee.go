package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies which upload an alias or a row came from.
type Source string

const (
	SourceHours    Source = "hours"
	SourceArticles Source = "articles"
	// SourceRoster marks aliases loaded from the employee roster. It is never
	// an upload source.
	SourceRoster Source = "roster"
)

func (s Source) String() string { return string(s) }

// IsValid reports whether s is an upload source.
func (s Source) IsValid() bool {
	switch s {
	case SourceHours, SourceArticles:
		return true
	}
	return false
}

// IsAliasSource reports whether an alias may record s as its origin.
func (s Source) IsAliasSource() bool {
	return s.IsValid() || s == SourceRoster
}

// Employee is a canonical identity. NormalizedName is unique across all
// employees.
type Employee struct {
	ID             uuid.UUID
	CanonicalName  string
	NormalizedName string
	FirstName      string
	LastName       string
	EmployeeNumber *string
	CreatedAt      time.Time
}

// NewEmployee holds the fields needed to mint an employee.
type NewEmployee struct {
	CanonicalName  string
	FirstName      string
	LastName       string
	EmployeeNumber *string
}

// NewEmployeeFromName builds a NewEmployee from a raw display name.
func NewEmployeeFromName(raw string) NewEmployee {
	canonical := CanonicalDisplayName(raw)
	first, last := SplitName(canonical)
	return NewEmployee{
		CanonicalName: canonical,
		FirstName:     first,
		LastName:      last,
	}
}

// Alias is a known spelling of an employee's name. Aliases are immutable.
type Alias struct {
	ID              uuid.UUID
	EmployeeID      uuid.UUID
	Alias           string
	AliasNormalized string
	Source          Source
	ConfirmedByUser bool
	ConfirmedAt     *time.Time
	CreatedAt       time.Time
}

// AliasEntry is one row of the alias snapshot used for matching.
type AliasEntry struct {
	AliasNormalized string    `db:"alias_normalized"`
	EmployeeID      uuid.UUID `db:"employee_id"`
	CanonicalName   string    `db:"canonical_name"`
	ConfirmedByUser bool      `db:"confirmed_by_user"`
}
