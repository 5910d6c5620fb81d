package dupcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleTables(t *testing.T) {
	tests := []struct {
		entity  EntityType
		labels  []string
		points  []int
		high    int
		medium  int
		maximum int
	}{
		{
			entity:  EntityLead,
			labels:  []string{"email", "email (similar)", "name", "name (similar)", "company", "company (similar)", "phone"},
			points:  []int{40, 20, 25, 15, 20, 10, 15},
			high:    80,
			medium:  65,
			maximum: 145,
		},
		{
			entity:  EntityAccount,
			labels:  []string{"name", "name (similar)", "website", "email domain", "phone"},
			points:  []int{50, 30, 30, 15, 5},
			high:    80,
			medium:  65,
			maximum: 130,
		},
		{
			entity:  EntityContact,
			labels:  []string{"email", "name", "name (similar)", "same account", "phone"},
			points:  []int{45, 30, 20, 15, 10},
			high:    85,
			medium:  70,
			maximum: 120,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.entity), func(t *testing.T) {
			rs, err := RulesFor(tt.entity)
			require.NoError(t, err)

			assert.Equal(t, tt.entity, rs.Entity)
			assert.Equal(t, AdmissionThreshold, rs.Threshold)
			assert.Equal(t, tt.high, rs.High)
			assert.Equal(t, tt.medium, rs.Medium)

			var labels []string
			var points []int
			total := 0
			for _, r := range rs.Rules {
				labels = append(labels, r.Label)
				points = append(points, r.Points)
				total += r.Points
				assert.NotNil(t, r.Test, "rule %q has no test", r.Label)
			}
			assert.Equal(t, tt.labels, labels)
			assert.Equal(t, tt.points, points)
			assert.Equal(t, tt.maximum, total)
		})
	}
}

func TestRulesForUnknownEntity(t *testing.T) {
	_, err := RulesFor(EntityType("opportunity"))
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		entity EntityType
		score  int
		want   Confidence
	}{
		{EntityLead, 145, ConfidenceHigh},
		{EntityLead, 80, ConfidenceHigh},
		{EntityLead, 79, ConfidenceMedium},
		{EntityLead, 65, ConfidenceMedium},
		{EntityLead, 64, ConfidenceLow},
		{EntityLead, 50, ConfidenceLow},
		{EntityAccount, 80, ConfidenceHigh},
		{EntityAccount, 65, ConfidenceMedium},
		{EntityAccount, 64, ConfidenceLow},
		{EntityContact, 85, ConfidenceHigh},
		{EntityContact, 84, ConfidenceMedium},
		{EntityContact, 80, ConfidenceMedium},
		{EntityContact, 70, ConfidenceMedium},
		{EntityContact, 69, ConfidenceLow},
	}

	for _, tt := range tests {
		rs, err := RulesFor(tt.entity)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rs.Confidence(tt.score), "%s score %d", tt.entity, tt.score)
	}
}

func TestLeadRules(t *testing.T) {
	rs := LeadRules()

	tests := []struct {
		name      string
		candidate *Lead
		existing  *Lead
		score     int
		labels    []string
	}{
		{
			name:      "exact email and name",
			candidate: &Lead{EmailAddress1: "john@acme.com", FirstName: "John", LastName: "Doe"},
			existing:  &Lead{LeadID: "l1", EmailAddress1: "john@acme.com", FirstName: "John", LastName: "Doe"},
			score:     65,
			labels:    []string{"email", "name"},
		},
		{
			name:      "everything exact",
			candidate: &Lead{EmailAddress1: "john@acme.com", FirstName: "John", LastName: "Doe", CompanyName: "Acme Inc", Telephone1: "555-1234"},
			existing:  &Lead{LeadID: "l1", EmailAddress1: "JOHN@acme.com", FirstName: "john", LastName: "doe", CompanyName: "ACME INC.", Telephone1: "555.1234"},
			score:     100,
			labels:    []string{"email", "name", "company", "phone"},
		},
		{
			// "johndoeacmeco" is contained in "johndoeacmecom": round(13/14*90) = 84
			name:      "similar email",
			candidate: &Lead{EmailAddress1: "john.doe@acme.com"},
			existing:  &Lead{LeadID: "l1", EmailAddress1: "john.doe@acme.co"},
			score:     20,
			labels:    []string{"email (similar)"},
		},
		{
			// "john doe" vs "john dow": 7 of 8 positions, round(7/8*80) = 70
			name:      "similar name",
			candidate: &Lead{FirstName: "John", LastName: "Doe"},
			existing:  &Lead{LeadID: "l1", FirstName: "John", LastName: "Dow"},
			score:     15,
			labels:    []string{"name (similar)"},
		},
		{
			// "acme inc" vs "acme inx": round(7/8*80) = 70
			name:      "similar company",
			candidate: &Lead{CompanyName: "Acme Inc"},
			existing:  &Lead{LeadID: "l1", CompanyName: "Acme Inx"},
			score:     10,
			labels:    []string{"company (similar)"},
		},
		{
			// "acme inc" vs "acme llc" scores 60
			name:      "dissimilar company",
			candidate: &Lead{CompanyName: "Acme Inc"},
			existing:  &Lead{LeadID: "l1", CompanyName: "Acme LLC"},
			score:     0,
			labels:    []string{},
		},
		{
			name:      "empty candidate",
			candidate: &Lead{},
			existing:  &Lead{LeadID: "l1", EmailAddress1: "john@acme.com", FirstName: "John", LastName: "Doe", CompanyName: "Acme", Telephone1: "555"},
			score:     0,
			labels:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, labels := rs.Evaluate(NewPair(tt.candidate, tt.existing, nil))
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestAccountRules(t *testing.T) {
	rs := AccountRules()

	tests := []struct {
		name      string
		candidate *Account
		existing  *Account
		score     int
		labels    []string
	}{
		{
			name:      "website domain ignores scheme and www",
			candidate: &Account{Name: "Acme Corp", WebsiteURL: "https://www.acme.com"},
			existing:  &Account{AccountID: "a1", Name: "Acme Corporation", WebsiteURL: "http://acme.com"},
			score:     30,
			labels:    []string{"website"},
		},
		{
			name:      "exact name",
			candidate: &Account{Name: "Acme Corp"},
			existing:  &Account{AccountID: "a1", Name: "ACME CORP."},
			score:     50,
			labels:    []string{"name"},
		},
		{
			name:      "shared email domain only",
			candidate: &Account{EmailAddress1: "sales@acme.com"},
			existing:  &Account{AccountID: "a1", EmailAddress1: "info@ACME.com"},
			score:     15,
			labels:    []string{"email domain"},
		},
		{
			name:      "different email domain",
			candidate: &Account{EmailAddress1: "sales@acme.com"},
			existing:  &Account{AccountID: "a1", EmailAddress1: "sales@acme.org"},
			score:     0,
			labels:    []string{},
		},
		{
			name:      "website email and phone",
			candidate: &Account{WebsiteURL: "acme.com", EmailAddress1: "sales@acme.com", Telephone1: "+1-555-1234"},
			existing:  &Account{AccountID: "a1", WebsiteURL: "www.acme.com", EmailAddress1: "info@acme.com", Telephone1: "1.555.1234"},
			score:     50,
			labels:    []string{"website", "email domain", "phone"},
		},
		{
			name:      "blank website never matches",
			candidate: &Account{WebsiteURL: "https://"},
			existing:  &Account{AccountID: "a1", WebsiteURL: "http://www."},
			score:     0,
			labels:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, labels := rs.Evaluate(NewPair(tt.candidate, tt.existing, nil))
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestContactSameAccountBonus(t *testing.T) {
	rs := ContactRules()
	candidate := &Contact{EmailAddress1: "jane@acme.com", FirstName: "Jane", LastName: "Smith", ParentCustomerID: "acc-1"}

	tests := []struct {
		name     string
		existing *Contact
		score    int
		labels   []string
	}{
		{
			// "jane smith" vs "jane smyth": round(9/10*80) = 72
			name:     "similar name same account",
			existing: &Contact{ContactID: "c1", EmailAddress1: "jane@acme.com", FirstName: "Jane", LastName: "Smyth", ParentCustomerID: "acc-1"},
			score:    60,
			labels:   []string{"email", "same account"},
		},
		{
			// "jane smith" vs "jane smoke": round(7/10*80) = 56
			name:     "dissimilar name same account",
			existing: &Contact{ContactID: "c2", EmailAddress1: "jane@acme.com", FirstName: "Jane", LastName: "Smoke", ParentCustomerID: "acc-1"},
			score:    45,
			labels:   []string{"email"},
		},
		{
			name:     "similar name other account",
			existing: &Contact{ContactID: "c3", EmailAddress1: "jane@acme.com", FirstName: "Jane", LastName: "Smyth", ParentCustomerID: "acc-2"},
			score:    45,
			labels:   []string{"email"},
		},
		{
			name:     "exact name same account",
			existing: &Contact{ContactID: "c4", FirstName: "Jane", LastName: "Smith", ParentCustomerID: "acc-1"},
			score:    45,
			labels:   []string{"name", "same account"},
		},
		{
			name:     "no parent account",
			existing: &Contact{ContactID: "c5", FirstName: "Jane", LastName: "Smyth"},
			score:    0,
			labels:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, labels := rs.Evaluate(NewPair(candidate, tt.existing, nil))
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestPairPresent(t *testing.T) {
	p := NewPair(
		&Lead{EmailAddress1: "john@acme.com"},
		&Lead{LeadID: "l1", EmailAddress1: "john@acme.com", CompanyName: "Acme"},
		nil,
	)

	assert.True(t, p.Present(FieldEmail))
	assert.False(t, p.Present(FieldCompany))
	assert.False(t, p.Present(FieldWebsite), "leads carry no website")
	// the joining space keeps the full name present; it still scores 0
	assert.True(t, p.Present(FieldName))
	assert.Equal(t, 0, p.Similarity(FieldName))
}

func TestRuleTests(t *testing.T) {
	pair := func(a, b string) *Pair {
		return NewPair(&Lead{CompanyName: a}, &Lead{CompanyName: b}, nil)
	}

	// "acme inc" vs "acme inx" scores 70
	assert.True(t, Between(70, 90)(pair("Acme Inc", "Acme Inx"), FieldCompany))
	assert.False(t, Between(71, 90)(pair("Acme Inc", "Acme Inx"), FieldCompany))
	assert.False(t, Between(50, 70)(pair("Acme Inc", "Acme Inx"), FieldCompany))
	assert.True(t, Between(90, 0)(pair("Acme", "acme"), FieldCompany))

	assert.True(t, Exact()(pair("Acme", "ACME"), FieldCompany))
	assert.False(t, Exact()(pair("Acme", "Acme Inc"), FieldCompany))

	assert.True(t, Above(69)(pair("Acme Inc", "Acme Inx"), FieldCompany))
	assert.False(t, Above(70)(pair("Acme Inc", "Acme Inx"), FieldCompany))
	assert.False(t, Above(80)(pair("Acme", "acme"), FieldCompany), "an exact value is not merely similar")
}
