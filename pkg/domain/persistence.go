package domain

import "context"

// Transaction exposes the mutations a persistence implementation must support
// within an atomic scope. Mutations referencing a missing organization or
// cell degrade to no-ops rather than errors; the boolean returns report
// whether a matching record existed.
type Transaction interface {
	Snapshot() TransactionView

	// CreateOrganization stamps id/createdAt/updatedAt when unset and
	// prepends the record to the collection.
	CreateOrganization(Organization) Organization
	// AppendOrganization stamps like CreateOrganization but appends,
	// preserving the ordinal position of generated records.
	AppendOrganization(Organization) Organization
	UpdateOrganization(id string, mutator func(*Organization)) (Organization, bool)
	DeleteOrganization(id string) bool
	// ReplaceOrganizations swaps the entire collection for fully-formed
	// records (seed reset).
	ReplaceOrganizations([]Organization)

	// SetAssignmentEnabled creates the cell when absent; disabling clears
	// the cell value in the same write.
	SetAssignmentEnabled(courseID, orgID string, enabled bool) Assignment
	// SetAssignmentValue creates the cell when absent and forces enabled.
	SetAssignmentValue(courseID, orgID, value string) Assignment
	// RemoveOrganizationAssignments drops the organization's cell from
	// every course row. Idempotent.
	RemoveOrganizationAssignments(orgID string) bool
	ClearAssignments()
}

// TransactionView provides read-only access to the transactional state.
type TransactionView interface {
	RuleView
}

// PersistError wraps a snapshot write failure that occurred after the
// in-memory commit succeeded. Callers can treat it as non-fatal: the
// committed state is still authoritative, only durability lagged.
type PersistError struct {
	Err error
}

func (e PersistError) Error() string { return "persist snapshot: " + e.Err.Error() }

// Unwrap exposes the underlying write failure.
func (e PersistError) Unwrap() error { return e.Err }

// PersistentStore is a minimal abstraction over durable backends. Durable
// implementations wrap the in-memory store and snapshot its full state after
// each successful transaction.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetOrganization(id string) (Organization, bool)
	ListOrganizations() []Organization
	MatrixSnapshot() Matrix
	Assignment(courseID, orgID string) Assignment
	Close() error
}
