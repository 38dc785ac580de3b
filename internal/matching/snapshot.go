package matching

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Entry is one alias known to a Snapshot.
//
// A provisional entry stands for a brand-new person seen earlier in the same
// batch who has no employee yet. Its EmployeeID is zero and CanonicalName is
// the raw name it was first seen under.
type Entry struct {
	AliasNormalized string
	FirstToken      string
	EmployeeID      uuid.UUID
	CanonicalName   string
	ConfirmedByUser bool
	Provisional     bool
}

// owner identifies the person behind an entry for deduplication.
func (e Entry) owner() string {
	if e.Provisional {
		return "provisional:" + e.CanonicalName
	}
	return e.EmployeeID.String()
}

// Snapshot is an in-memory alias index built once per batch. It is not safe
// for concurrent use.
type Snapshot struct {
	entries []Entry
	index   map[string]int
}

// NewSnapshot indexes the given alias rows. Later duplicates of one
// normalized alias are ignored.
func NewSnapshot(aliases []domain.AliasEntry) *Snapshot {
	s := &Snapshot{
		entries: make([]Entry, 0, len(aliases)),
		index:   make(map[string]int, len(aliases)),
	}
	for _, a := range aliases {
		s.add(Entry{
			AliasNormalized: a.AliasNormalized,
			EmployeeID:      a.EmployeeID,
			CanonicalName:   a.CanonicalName,
			ConfirmedByUser: a.ConfirmedByUser,
		})
	}
	return s
}

// AddAlias records that name now belongs to an existing employee.
// It reports false if the normalized name was already indexed.
func (s *Snapshot) AddAlias(name string, employeeID uuid.UUID, canonicalName string, confirmed bool) bool {
	return s.add(Entry{
		AliasNormalized: domain.NormalizeName(name),
		EmployeeID:      employeeID,
		CanonicalName:   canonicalName,
		ConfirmedByUser: confirmed,
	})
}

// AddProvisional records a new, not yet created person under name.
func (s *Snapshot) AddProvisional(name string) bool {
	return s.add(Entry{
		AliasNormalized: domain.NormalizeName(name),
		CanonicalName:   domain.CanonicalDisplayName(name),
		Provisional:     true,
	})
}

func (s *Snapshot) add(e Entry) bool {
	if e.AliasNormalized == "" {
		return false
	}
	if _, ok := s.index[e.AliasNormalized]; ok {
		return false
	}
	if e.FirstToken == "" {
		e.FirstToken = domain.FirstNameToken(e.AliasNormalized)
	}
	s.index[e.AliasNormalized] = len(s.entries)
	s.entries = append(s.entries, e)
	return true
}

// Lookup returns the entry for an already-normalized alias.
func (s *Snapshot) Lookup(normalized string) (Entry, bool) {
	i, ok := s.index[normalized]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Len returns the number of indexed aliases.
func (s *Snapshot) Len() int { return len(s.entries) }
