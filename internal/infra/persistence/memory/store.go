// Package memory provides the authoritative in-memory implementation of the
// orgmatrix persistence store. Durable backends wrap it and snapshot its
// state after each successful transaction.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"orgmatrix/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Organization aliases domain.Organization for in-memory persistence operations.
	Organization = domain.Organization
	// Assignment aliases domain.Assignment.
	Assignment = domain.Assignment
	// Matrix aliases domain.Matrix.
	Matrix = domain.Matrix
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	organizations []Organization
	matrix        Matrix
}

func newMemoryState() memoryState {
	return memoryState{matrix: make(Matrix)}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		organizations: append([]Organization(nil), s.organizations...),
		matrix:        s.matrix.Clone(),
	}
	if cloned.matrix == nil {
		cloned.matrix = make(Matrix)
	}
	return cloned
}

func (s memoryState) findOrganization(id string) (int, bool) {
	for i, org := range s.organizations {
		if org.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Snapshot captures a point-in-time clone of the store state. It is the unit
// durable backends serialize: one payload per field.
type Snapshot struct {
	Organizations []Organization `json:"organizations"`
	Matrix        Matrix         `json:"matrix"`
}

// Store is an in-memory transactional store holding the organization
// collection and the course assignment matrix in one shared state, so an
// organization delete and its matrix cascade commit atomically.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	idFn   func() string
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   uuid.NewString,
	}
}

// SetClock overrides the transaction timestamp source. Intended for tests
// and for services that inject a shared clock.
func (s *Store) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = now
	s.mu.Unlock()
}

// ExportState returns a deep copy of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{Organizations: cloned.organizations, Matrix: cloned.matrix}
}

// ImportState replaces the committed state with the snapshot contents,
// bypassing rule evaluation. Used to hydrate from a persisted payload.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := memoryState{
		organizations: append([]Organization(nil), snapshot.Organizations...),
		matrix:        snapshot.Matrix.Clone(),
	}
	if next.matrix == nil {
		next.matrix = make(Matrix)
	}
	s.state = next
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

var _ Transaction = (*transaction)(nil)

type transactionView struct {
	state *memoryState
}

var _ TransactionView = transactionView{}

func (v transactionView) ListOrganizations() []Organization {
	return append([]Organization(nil), v.state.organizations...)
}

func (v transactionView) FindOrganization(id string) (Organization, bool) {
	if i, ok := v.state.findOrganization(id); ok {
		return v.state.organizations[i], true
	}
	return Organization{}, false
}

func (v transactionView) MatrixSnapshot() Matrix {
	m := v.state.matrix.Clone()
	if m == nil {
		m = make(Matrix)
	}
	return m
}

// RunInTransaction executes fn against a transactional copy of the store
// state, evaluates the registered rules against the candidate state, and
// commits unless a blocking violation or error occurred.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the committed state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) Snapshot() TransactionView {
	return transactionView{state: &tx.state}
}

func (tx *transaction) stamp(org Organization) Organization {
	if org.ID == "" {
		org.ID = tx.store.idFn()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = tx.now
	}
	if org.UpdatedAt.IsZero() {
		org.UpdatedAt = org.CreatedAt
	}
	return org
}

// CreateOrganization stamps and prepends a new organization record.
func (tx *transaction) CreateOrganization(org Organization) Organization {
	org = tx.stamp(org)
	tx.state.organizations = append([]Organization{org}, tx.state.organizations...)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionCreate, After: org})
	return org
}

// AppendOrganization stamps and appends a new organization record, keeping
// generated samples in ordinal order.
func (tx *transaction) AppendOrganization(org Organization) Organization {
	org = tx.stamp(org)
	tx.state.organizations = append(tx.state.organizations, org)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionCreate, After: org})
	return org
}

// UpdateOrganization applies the mutator to the matching record and bumps
// its updatedAt stamp. Missing ids are a no-op, not an error.
func (tx *transaction) UpdateOrganization(id string, mutator func(*Organization)) (Organization, bool) {
	i, ok := tx.state.findOrganization(id)
	if !ok {
		return Organization{}, false
	}
	before := tx.state.organizations[i]
	current := before
	if mutator != nil {
		mutator(&current)
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.organizations[i] = current
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionUpdate, Before: before, After: current})
	return current, true
}

// DeleteOrganization removes the matching record from the collection.
// Missing ids are a no-op. Callers owning the full deletion semantics must
// also invoke RemoveOrganizationAssignments in the same transaction; the
// integrity rule blocks commits that leave orphaned cells behind.
func (tx *transaction) DeleteOrganization(id string) bool {
	i, ok := tx.state.findOrganization(id)
	if !ok {
		return false
	}
	before := tx.state.organizations[i]
	tx.state.organizations = append(tx.state.organizations[:i], tx.state.organizations[i+1:]...)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionDelete, Before: before})
	return true
}

// ReplaceOrganizations swaps the whole collection for fully-formed records.
func (tx *transaction) ReplaceOrganizations(orgs []Organization) {
	before := tx.state.organizations
	tx.state.organizations = append([]Organization(nil), orgs...)
	tx.recordChange(Change{Entity: domain.EntityOrganization, Action: domain.ActionUpdate, Before: before, After: tx.state.organizations})
}

func (tx *transaction) row(courseID string) map[string]Assignment {
	row, ok := tx.state.matrix[courseID]
	if !ok {
		row = make(map[string]Assignment)
		tx.state.matrix[courseID] = row
	}
	return row
}

// SetAssignmentEnabled writes the cell's enabled flag, creating the cell when
// absent. Disabling discards the value in the same write.
func (tx *transaction) SetAssignmentEnabled(courseID, orgID string, enabled bool) Assignment {
	row := tx.row(courseID)
	before := row[orgID]
	next := before
	next.Enabled = enabled
	if !enabled {
		next.Value = ""
	}
	row[orgID] = next
	tx.recordChange(Change{Entity: domain.EntityAssignment, Action: domain.ActionUpdate, Before: before, After: next})
	return next
}

// SetAssignmentValue writes the cell's value and forces enabled: a cell can
// never carry a value while disabled.
func (tx *transaction) SetAssignmentValue(courseID, orgID, value string) Assignment {
	row := tx.row(courseID)
	before := row[orgID]
	next := Assignment{Enabled: true, Value: value}
	row[orgID] = next
	tx.recordChange(Change{Entity: domain.EntityAssignment, Action: domain.ActionUpdate, Before: before, After: next})
	return next
}

// RemoveOrganizationAssignments drops the organization's cell from every
// course row. Rows belonging to other organizations are untouched.
func (tx *transaction) RemoveOrganizationAssignments(orgID string) bool {
	removed := false
	for courseID, row := range tx.state.matrix {
		if cell, ok := row[orgID]; ok {
			delete(row, orgID)
			removed = true
			tx.recordChange(Change{Entity: domain.EntityAssignment, Action: domain.ActionDelete, Before: cell, After: nil})
		}
		if len(row) == 0 {
			delete(tx.state.matrix, courseID)
		}
	}
	return removed
}

// ClearAssignments empties the matrix.
func (tx *transaction) ClearAssignments() {
	if len(tx.state.matrix) == 0 {
		return
	}
	before := tx.state.matrix
	tx.state.matrix = make(Matrix)
	tx.recordChange(Change{Entity: domain.EntityAssignment, Action: domain.ActionDelete, Before: before})
}

// Read helpers ---------------------------------------------------------------

// GetOrganization retrieves an organization by id from committed state.
func (s *Store) GetOrganization(id string) (Organization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.state.findOrganization(id); ok {
		return s.state.organizations[i], true
	}
	return Organization{}, false
}

// ListOrganizations returns the committed collection in order.
func (s *Store) ListOrganizations() []Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Organization(nil), s.state.organizations...)
}

// MatrixSnapshot returns a deep copy of the committed matrix.
func (s *Store) MatrixSnapshot() Matrix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.state.matrix.Clone()
	if m == nil {
		m = make(Matrix)
	}
	return m
}

// Assignment reads one cell from committed state; a missing row or cell
// reads as the zero assignment.
func (s *Store) Assignment(courseID, orgID string) Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.matrix.Cell(courseID, orgID)
}

// Close satisfies domain.PersistentStore; the in-memory store holds no
// external resources.
func (s *Store) Close() error { return nil }
