package dupcheck

import (
	"fmt"

	"github.com/josegonzalez/dupcheck/pkg/internal/matching"
	"github.com/josegonzalez/dupcheck/pkg/internal/normalization"
)

// AdmissionThreshold is the minimum summed score for an existing record to be reported.
const AdmissionThreshold = 50

// Test decides whether a rule fires for a pair of records on the given field.
// It is only called when the field is present on both records.
type Test func(p *Pair, f Field) bool

// Rule awards Points under Label when its Test passes.
type Rule struct {
	Label  string
	Points int
	Field  Field
	Test   Test
}

// RuleSet is the ordered rule table and calibration of one entity type.
type RuleSet struct {
	Entity EntityType
	// Threshold is the admission threshold
	Threshold int
	// High and Medium are the inclusive confidence cutoffs for the top score
	High   int
	Medium int
	Rules  []Rule
}

// Exact passes when the field values are equal after normalization.
func Exact() Test {
	return func(p *Pair, f Field) bool {
		return p.Similarity(f) == matching.ExactScore
	}
}

// Above passes when the similarity is strictly greater than n but not exact.
func Above(n int) Test {
	return func(p *Pair, f Field) bool {
		s := p.Similarity(f)
		return s > n && s < matching.ExactScore
	}
}

// Between passes when lo <= similarity < hi. A hi of 0 leaves the range open.
func Between(lo, hi int) Test {
	return func(p *Pair, f Field) bool {
		s := p.Similarity(f)
		return s >= lo && (hi == 0 || s < hi)
	}
}

// SameWebDomain passes when both websites reduce to the same non-empty domain.
func SameWebDomain() Test {
	return func(p *Pair, f Field) bool {
		a := p.scorer.WebDomain(p.Candidate.Value(f))
		return a != "" && a == p.scorer.WebDomain(p.Existing.Value(f))
	}
}

// SameEmailDomain passes when both email addresses share the same non-empty domain.
func SameEmailDomain() Test {
	return func(p *Pair, f Field) bool {
		a := normalization.EmailDomain(p.Candidate.Value(f))
		return a != "" && a == normalization.EmailDomain(p.Existing.Value(f))
	}
}

// SameValueAnd passes when the field holds the identical raw value on both
// records and the other field is at least lo similar.
func SameValueAnd(other Field, lo int) Test {
	return func(p *Pair, f Field) bool {
		return p.Candidate.Value(f) == p.Existing.Value(f) && p.Similarity(other) >= lo
	}
}

// LeadRules returns the lead rule table.
func LeadRules() RuleSet {
	return RuleSet{
		Entity:    EntityLead,
		Threshold: AdmissionThreshold,
		High:      80,
		Medium:    65,
		Rules: []Rule{
			{Label: "email", Points: 40, Field: FieldEmail, Test: Exact()},
			{Label: "email (similar)", Points: 20, Field: FieldEmail, Test: Above(80)},
			{Label: "name", Points: 25, Field: FieldName, Test: Between(90, 0)},
			{Label: "name (similar)", Points: 15, Field: FieldName, Test: Between(70, 90)},
			{Label: "company", Points: 20, Field: FieldCompany, Test: Between(90, 0)},
			{Label: "company (similar)", Points: 10, Field: FieldCompany, Test: Between(70, 90)},
			{Label: "phone", Points: 15, Field: FieldPhone, Test: Exact()},
		},
	}
}

// AccountRules returns the account rule table.
func AccountRules() RuleSet {
	return RuleSet{
		Entity:    EntityAccount,
		Threshold: AdmissionThreshold,
		High:      80,
		Medium:    65,
		Rules: []Rule{
			{Label: "name", Points: 50, Field: FieldName, Test: Between(95, 0)},
			{Label: "name (similar)", Points: 30, Field: FieldName, Test: Between(80, 95)},
			{Label: "website", Points: 30, Field: FieldWebsite, Test: SameWebDomain()},
			{Label: "email domain", Points: 15, Field: FieldEmail, Test: SameEmailDomain()},
			{Label: "phone", Points: 5, Field: FieldPhone, Test: Exact()},
		},
	}
}

// ContactRules returns the contact rule table. Contacts use stricter
// confidence cutoffs than leads and accounts.
func ContactRules() RuleSet {
	return RuleSet{
		Entity:    EntityContact,
		Threshold: AdmissionThreshold,
		High:      85,
		Medium:    70,
		Rules: []Rule{
			{Label: "email", Points: 45, Field: FieldEmail, Test: Exact()},
			{Label: "name", Points: 30, Field: FieldName, Test: Between(95, 0)},
			{Label: "name (similar)", Points: 20, Field: FieldName, Test: Between(80, 95)},
			{Label: "same account", Points: 15, Field: FieldParentAccount, Test: SameValueAnd(FieldName, 70)},
			{Label: "phone", Points: 10, Field: FieldPhone, Test: Exact()},
		},
	}
}

// RulesFor returns the rule table of an entity type.
func RulesFor(entity EntityType) (RuleSet, error) {
	switch entity {
	case EntityLead:
		return LeadRules(), nil
	case EntityAccount:
		return AccountRules(), nil
	case EntityContact:
		return ContactRules(), nil
	}
	return RuleSet{}, fmt.Errorf("%w: %q", ErrUnknownEntityType, entity)
}

// Confidence classifies a top score against the rule set's cutoffs.
func (rs RuleSet) Confidence(topScore int) Confidence {
	switch {
	case topScore >= rs.High:
		return ConfidenceHigh
	case topScore >= rs.Medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Pair is one candidate/existing comparison. Similarities are computed once per field.
type Pair struct {
	Candidate Record
	Existing  Record

	scorer *matching.Scorer
	sims   map[Field]int
}

// NewPair creates a Pair. A nil scorer uses the default normalizer.
func NewPair(candidate, existing Record, scorer *matching.Scorer) *Pair {
	if scorer == nil {
		scorer = matching.NewScorer(nil)
	}
	return &Pair{
		Candidate: candidate,
		Existing:  existing,
		scorer:    scorer,
		sims:      make(map[Field]int, 4),
	}
}

// Present reports whether the field holds a value on both records.
func (p *Pair) Present(f Field) bool {
	return p.Candidate.Value(f) != "" && p.Existing.Value(f) != ""
}

// Similarity returns the heuristic similarity of the field values.
func (p *Pair) Similarity(f Field) int {
	if s, ok := p.sims[f]; ok {
		return s
	}
	s := p.scorer.Similarity(p.Candidate.Value(f), p.Existing.Value(f))
	p.sims[f] = s
	return s
}

// Fires reports whether the rule awards its points for this pair.
func (p *Pair) Fires(r Rule) bool {
	return p.Present(r.Field) && r.Test(p, r.Field)
}

// Evaluate applies every rule and returns the summed points and the labels of
// the rules that fired, in rule order. No rule short-circuits another.
func (rs RuleSet) Evaluate(p *Pair) (int, []string) {
	points := 0
	labels := []string{}
	for _, r := range rs.Rules {
		if p.Fires(r) {
			points += r.Points
			labels = append(labels, r.Label)
		}
	}
	return points, labels
}
