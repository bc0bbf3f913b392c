// Package domain defines the persistent entities, value types, and rule
// evaluation primitives shared by the orgmatrix stores.
package domain

import "time"

// EntityType identifies the type of record stored by the core state.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityOrganization identifies a tenant/client record.
	EntityOrganization EntityType = "organization"
	// EntityAssignment identifies a single (course, organization) matrix cell.
	EntityAssignment EntityType = "assignment"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Branding carries the customizable visual identity of an organization.
type Branding struct {
	LogoURL string `json:"logoUrl,omitempty"`
}

// Organization represents a tenant/client record. JSON field names match the
// persisted wire format; the collection is order-significant (newest first
// for interactive creates, generated samples appended at the end).
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Domain       string    `json:"domain,omitempty"`
	WhiteLabeled bool      `json:"whiteLabeled"`
	Branding     Branding  `json:"branding,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Course is static reference data for one axis of the matrix. Courses are
// supplied externally and never mutated by the stores.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Assignment is one matrix cell. A disabled cell never carries a value;
// an absent cell reads as the zero Assignment.
type Assignment struct {
	Enabled bool   `json:"enabled"`
	Value   string `json:"value,omitempty"`
}

// Matrix maps courseID -> organizationID -> Assignment. Rows and cells are
// sparse: missing keys mean the cell was never touched.
type Matrix map[string]map[string]Assignment

// Cell returns the assignment for (courseID, orgID), treating a missing row
// or cell as the zero assignment.
func (m Matrix) Cell(courseID, orgID string) Assignment {
	if row, ok := m[courseID]; ok {
		if cell, ok := row[orgID]; ok {
			return cell
		}
	}
	return Assignment{}
}

// Clone deep-copies the matrix.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for courseID, row := range m {
		cp := make(map[string]Assignment, len(row))
		for orgID, cell := range row {
			cp[orgID] = cell
		}
		out[courseID] = cp
	}
	return out
}

// EnabledCount returns the number of enabled cells across all rows.
func (m Matrix) EnabledCount() int {
	total := 0
	for _, row := range m {
		for _, cell := range row {
			if cell.Enabled {
				total++
			}
		}
	}
	return total
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured per transaction.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
