package matching

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Tier is the confidence tier a name was classified into.
type Tier int

const (
	TierNoMatch Tier = iota
	TierManual
	TierAuto
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierAuto:
		return "auto"
	case TierManual:
		return "manual"
	default:
		return "no_match"
	}
}

// Candidate is an existing employee that may be the person behind a name.
type Candidate struct {
	EmployeeID      uuid.UUID `json:"employeeId"`
	CanonicalName   string    `json:"canonicalName"`
	Score           float64   `json:"similarityScore"`
	ConfirmedByUser bool      `json:"isUserConfirmed"`
}

// Classification is the outcome of classifying one name.
type Classification struct {
	Name       string
	Normalized string
	Tier       Tier

	// Match and Score are set for TierExact and TierAuto.
	Match Entry
	Score float64

	// Candidates is set for TierManual.
	Candidates []Candidate
}

// Bound reports whether the name was matched without human input.
func (c Classification) Bound() bool {
	return c.Tier == TierExact || c.Tier == TierAuto
}

// Policy classifies names against a Snapshot.
type Policy struct {
	t Thresholds
}

// NewPolicy creates a Policy with the given thresholds.
func NewPolicy(t Thresholds) *Policy {
	return &Policy{t: t}
}

// Thresholds returns the policy configuration.
func (p *Policy) Thresholds() Thresholds { return p.t }

// scored is an eligible alias together with its full-name score.
type scored struct {
	entry Entry
	score float64
}

// Classify decides how name relates to the aliases in snap.
//
// An exact normalized hit wins outright. Otherwise only aliases whose first
// name passes the first-name gate are scored on the full name. The single best
// alias at or above the auto-match threshold is bound; anything else at or
// above the manual threshold becomes a candidate for a human to pick.
func (p *Policy) Classify(name string, snap *Snapshot) Classification {
	normalized := domain.NormalizeName(name)
	c := Classification{Name: name, Normalized: normalized, Tier: TierNoMatch}
	if normalized == "" {
		return c
	}

	if e, ok := snap.Lookup(normalized); ok {
		c.Tier = TierExact
		c.Match = e
		c.Score = ExactMatch
		return c
	}

	first := domain.FirstNameToken(normalized)

	// Best score per owner; an employee with several aliases shows up once.
	best := make(map[string]scored)
	for _, e := range snap.entries {
		if similarityNormalized(first, e.FirstToken) < p.t.FirstName {
			continue
		}
		score := similarityNormalized(normalized, e.AliasNormalized)
		if score < p.t.Manual {
			continue
		}
		if prev, ok := best[e.owner()]; !ok || score > prev.score {
			best[e.owner()] = scored{entry: e, score: score}
		}
	}
	if len(best) == 0 {
		return c
	}

	ranked := make([]scored, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	slices.SortFunc(ranked, func(a, b scored) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.entry.CanonicalName, b.entry.CanonicalName)
	})

	top := ranked[0]
	tied := len(ranked) > 1 && ranked[1].score == top.score
	if top.score >= p.t.AutoMatch && !tied {
		c.Tier = TierAuto
		c.Match = top.entry
		c.Score = top.score
		return c
	}

	for _, s := range ranked {
		// Provisional people cannot be picked: they have no employee yet.
		if s.entry.Provisional {
			continue
		}
		c.Candidates = append(c.Candidates, Candidate{
			EmployeeID:      s.entry.EmployeeID,
			CanonicalName:   s.entry.CanonicalName,
			Score:           s.score,
			ConfirmedByUser: s.entry.ConfirmedByUser,
		})
		if len(c.Candidates) == p.t.MaxCandidates {
			break
		}
	}
	if len(c.Candidates) > 0 {
		c.Tier = TierManual
	}
	return c
}
