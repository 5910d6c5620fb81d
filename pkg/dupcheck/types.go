// Package dupcheck detects likely duplicates of a new CRM record (lead,
// account or contact) among the existing records of the same kind.
package dupcheck

import (
	"fmt"
	"strings"
)

// EntityType identifies the kind of CRM record being checked.
type EntityType string

const (
	EntityLead    EntityType = "lead"
	EntityAccount EntityType = "account"
	EntityContact EntityType = "contact"
)

// EntityTypes lists every supported entity type.
func EntityTypes() []EntityType {
	return []EntityType{EntityLead, EntityAccount, EntityContact}
}

// ParseEntityType parses an entity type name. Plural forms and any casing are accepted.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lead", "leads":
		return EntityLead, nil
	case "account", "accounts":
		return EntityAccount, nil
	case "contact", "contacts":
		return EntityContact, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
}

// Field names a comparable value on a record.
type Field string

const (
	FieldEmail         Field = "email"
	FieldName          Field = "name"
	FieldCompany       Field = "company"
	FieldPhone         Field = "phone"
	FieldWebsite       Field = "website"
	FieldParentAccount Field = "parent_account"
)

// Record is implemented by *Lead, *Account and *Contact.
// Value returns "" for fields the record type does not carry.
type Record interface {
	EntityType() EntityType
	RecordID() string
	Value(f Field) string
}

// fullName joins first and last name. The separating space is always present.
func fullName(first, last string) string {
	return first + " " + last
}

// Lead is a CRM lead. Candidate leads may leave any field empty.
type Lead struct {
	LeadID        string `json:"leadid" yaml:"leadid"`
	FirstName     string `json:"firstname,omitempty" yaml:"firstname,omitempty"`
	LastName      string `json:"lastname,omitempty" yaml:"lastname,omitempty"`
	EmailAddress1 string `json:"emailaddress1,omitempty" yaml:"emailaddress1,omitempty"`
	CompanyName   string `json:"companyname,omitempty" yaml:"companyname,omitempty"`
	Telephone1    string `json:"telephone1,omitempty" yaml:"telephone1,omitempty"`
}

// EntityType implements Record.
func (l *Lead) EntityType() EntityType { return EntityLead }

// RecordID implements Record.
func (l *Lead) RecordID() string { return l.LeadID }

// Value implements Record.
func (l *Lead) Value(f Field) string {
	switch f {
	case FieldEmail:
		return l.EmailAddress1
	case FieldName:
		return fullName(l.FirstName, l.LastName)
	case FieldCompany:
		return l.CompanyName
	case FieldPhone:
		return l.Telephone1
	}
	return ""
}

// Account is a CRM account (organization).
type Account struct {
	AccountID     string `json:"accountid" yaml:"accountid"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	WebsiteURL    string `json:"websiteurl,omitempty" yaml:"websiteurl,omitempty"`
	EmailAddress1 string `json:"emailaddress1,omitempty" yaml:"emailaddress1,omitempty"`
	Telephone1    string `json:"telephone1,omitempty" yaml:"telephone1,omitempty"`
}

// EntityType implements Record.
func (a *Account) EntityType() EntityType { return EntityAccount }

// RecordID implements Record.
func (a *Account) RecordID() string { return a.AccountID }

// Value implements Record.
func (a *Account) Value(f Field) string {
	switch f {
	case FieldName:
		return a.Name
	case FieldWebsite:
		return a.WebsiteURL
	case FieldEmail:
		return a.EmailAddress1
	case FieldPhone:
		return a.Telephone1
	}
	return ""
}

// Contact is a CRM contact, optionally attached to a parent account.
type Contact struct {
	ContactID        string `json:"contactid" yaml:"contactid"`
	FirstName        string `json:"firstname,omitempty" yaml:"firstname,omitempty"`
	LastName         string `json:"lastname,omitempty" yaml:"lastname,omitempty"`
	EmailAddress1    string `json:"emailaddress1,omitempty" yaml:"emailaddress1,omitempty"`
	Telephone1       string `json:"telephone1,omitempty" yaml:"telephone1,omitempty"`
	ParentCustomerID string `json:"parentcustomerid,omitempty" yaml:"parentcustomerid,omitempty"`
}

// EntityType implements Record.
func (c *Contact) EntityType() EntityType { return EntityContact }

// RecordID implements Record.
func (c *Contact) RecordID() string { return c.ContactID }

// Value implements Record.
func (c *Contact) Value(f Field) string {
	switch f {
	case FieldEmail:
		return c.EmailAddress1
	case FieldName:
		return fullName(c.FirstName, c.LastName)
	case FieldPhone:
		return c.Telephone1
	case FieldParentAccount:
		return c.ParentCustomerID
	}
	return ""
}

// Confidence is a coarse classification of the strongest match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DuplicateMatch is an existing record whose score cleared the admission threshold.
type DuplicateMatch struct {
	// ID is the existing record's identity
	ID string `json:"id"`
	// Score is the sum of the points of every rule that fired; it may exceed 100
	Score int `json:"score"`
	// MatchedFields lists the labels of the rules that fired, in rule order
	MatchedFields []string `json:"matchedFields"`
	// Record is the existing record itself, never copied or modified
	Record Record `json:"record"`
}

// DuplicateDetectionResult is the outcome of one detection call.
type DuplicateDetectionResult struct {
	// HasDuplicates is true when at least one match was admitted, before truncation
	HasDuplicates bool `json:"hasDuplicates"`
	// Matches holds the highest scoring matches, score descending
	Matches []DuplicateMatch `json:"matches"`
	// Confidence is derived from the top score
	Confidence Confidence `json:"confidence"`
}

// TopMatch returns the highest scoring match, or nil when there is none.
func (r *DuplicateDetectionResult) TopMatch() *DuplicateMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// RuleOutcome describes how a single rule evaluated for one pair of records.
type RuleOutcome struct {
	Label  string `json:"label"`
	Field  Field  `json:"field"`
	Points int    `json:"points"`
	Fired  bool   `json:"fired"`
	// Present is false when either record lacks the compared field
	Present bool `json:"present"`
	// Similarity is the heuristic score that rules are calibrated against
	Similarity int `json:"similarity"`
	// ReferenceSimilarity is Jaro-Winkler on the same scale, for review only
	ReferenceSimilarity int `json:"referenceSimilarity"`
}

// Explanation is a per-rule breakdown of one candidate/existing comparison.
type Explanation struct {
	Entity    EntityType    `json:"entity"`
	ID        string        `json:"id"`
	Rules     []RuleOutcome `json:"rules"`
	Score     int           `json:"score"`
	Threshold int           `json:"threshold"`
	Admitted  bool          `json:"admitted"`
}
