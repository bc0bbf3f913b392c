// Package core exposes the transactional service facade over the orgmatrix
// persistence stores, plus the rules, aggregation queries, and observability
// seams around it.
package core

import (
	"context"
	"errors"
	"sync"

	"orgmatrix/internal/infra/persistence/memory"
	"orgmatrix/internal/seed"
	"orgmatrix/pkg/domain"
)

// Service exposes higher-level transactional operations over the organization
// collection and the course assignment matrix.
type Service struct {
	store   PersistentStore
	catalog []Course

	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer

	mu             sync.Mutex
	lastPersistErr error
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: seed.Courses(),
		clock:   systemClock{},
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// default rules registered.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(DefaultRulesEngine()), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Courses returns the course catalog in display order.
func (s *Service) Courses() []Course { return append([]Course(nil), s.catalog...) }

// LastPersistError reports the most recent swallowed snapshot failure, nil
// when durability is healthy.
func (s *Service) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}

// instrument wraps an operation with timing, tracing, and metrics, and
// downgrades snapshot persistence failures to a logged warning: the in-memory
// commit already succeeded, durability is best-effort.
func (s *Service) instrument(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	err := fn(ctx)

	var persistErr domain.PersistError
	if errors.As(err, &persistErr) {
		s.mu.Lock()
		s.lastPersistErr = persistErr
		s.mu.Unlock()
		s.logger.Warn("snapshot persistence failed", "operation", operation, "error", persistErr.Err.Error())
		s.metrics.Observe(ctx, "persist_snapshot", false, s.clock.Now().Sub(start))
		err = nil
	} else if err == nil {
		s.mu.Lock()
		s.lastPersistErr = nil
		s.mu.Unlock()
	}

	s.metrics.Observe(ctx, operation, err == nil, s.clock.Now().Sub(start))
	span.End(err)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err.Error())
	} else {
		s.logger.Debug("operation complete", "operation", operation)
	}
	return err
}

// CreateOrganization stamps and prepends a new organization record.
func (s *Service) CreateOrganization(ctx context.Context, draft Organization) (Organization, Result, error) {
	var created Organization
	var res Result
	err := s.instrument(ctx, "create_organization", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created = tx.CreateOrganization(draft)
			return nil
		})
		return err
	})
	return created, res, err
}

// OrganizationPatch carries a shallow patch: nil fields retain the stored
// value, set fields overwrite it.
type OrganizationPatch struct {
	Name         *string
	Code         *string
	Domain       *string
	WhiteLabeled *bool
	Branding     *Branding
	ContactEmail *string
}

func (p OrganizationPatch) apply(o *Organization) {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Code != nil {
		o.Code = *p.Code
	}
	if p.Domain != nil {
		o.Domain = *p.Domain
	}
	if p.WhiteLabeled != nil {
		o.WhiteLabeled = *p.WhiteLabeled
	}
	if p.Branding != nil {
		o.Branding = *p.Branding
	}
	if p.ContactEmail != nil {
		o.ContactEmail = *p.ContactEmail
	}
}

// UpdateOrganization merges the patch into the matching record and bumps its
// updatedAt stamp. A missing id is a no-op reported through the bool.
func (s *Service) UpdateOrganization(ctx context.Context, id string, patch OrganizationPatch) (Organization, bool, Result, error) {
	var updated Organization
	var found bool
	var res Result
	err := s.instrument(ctx, "update_organization", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			updated, found = tx.UpdateOrganization(id, func(o *Organization) { patch.apply(o) })
			return nil
		})
		return err
	})
	return updated, found, res, err
}

// DeleteOrganization removes the record and its matrix column in one
// transaction, so no commit can leave orphaned cells behind.
func (s *Service) DeleteOrganization(ctx context.Context, id string) (bool, Result, error) {
	var deleted bool
	var res Result
	err := s.instrument(ctx, "delete_organization", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			deleted = tx.DeleteOrganization(id)
			tx.RemoveOrganizationAssignments(id)
			return nil
		})
		return err
	})
	return deleted, res, err
}

// GetOrganization retrieves one committed record.
func (s *Service) GetOrganization(id string) (Organization, bool) {
	return s.store.GetOrganization(id)
}

// ListOrganizations returns the committed collection in order.
func (s *Service) ListOrganizations() []Organization {
	return s.store.ListOrganizations()
}

// ResetOrganizations replaces the collection with the built-in seed set and
// prunes matrix columns belonging to organizations that no longer exist.
func (s *Service) ResetOrganizations(ctx context.Context) (Result, error) {
	var res Result
	err := s.instrument(ctx, "reset_organizations", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			seeded := seed.Organizations()
			tx.ReplaceOrganizations(seeded)
			keep := make(map[string]struct{}, len(seeded))
			for _, org := range seeded {
				keep[org.ID] = struct{}{}
			}
			for _, orgID := range matrixOrganizationIDs(tx.Snapshot().MatrixSnapshot()) {
				if _, ok := keep[orgID]; !ok {
					tx.RemoveOrganizationAssignments(orgID)
				}
			}
			return nil
		})
		return err
	})
	return res, err
}

func matrixOrganizationIDs(m Matrix) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range m {
		for orgID := range row {
			if _, ok := seen[orgID]; !ok {
				seen[orgID] = struct{}{}
				out = append(out, orgID)
			}
		}
	}
	return out
}

// AddSampleOrganizations appends count synthetic clients. Names and codes
// derive from the 1-based ordinal position; all share one generation stamp.
func (s *Service) AddSampleOrganizations(ctx context.Context, count int) ([]Organization, Result, error) {
	var created []Organization
	var res Result
	err := s.instrument(ctx, "add_sample_organizations", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			base := len(tx.Snapshot().ListOrganizations())
			for i := 0; i < count; i++ {
				created = append(created, tx.AppendOrganization(seed.SampleOrganization(base+1+i)))
			}
			return nil
		})
		return err
	})
	return created, res, err
}

// EnsureSeed populates the organization collection when the store loaded
// empty, mirroring first-run behavior. Returns true when seeding happened.
func (s *Service) EnsureSeed(ctx context.Context) (bool, error) {
	if len(s.store.ListOrganizations()) > 0 || len(s.store.MatrixSnapshot()) > 0 {
		return false, nil
	}
	_, err := s.ResetOrganizations(ctx)
	return err == nil, err
}

// SetCourseEnabled writes a cell's enabled flag. Disabling clears the value
// in the same write.
func (s *Service) SetCourseEnabled(ctx context.Context, courseID, orgID string, enabled bool) (Assignment, Result, error) {
	var cell Assignment
	var res Result
	err := s.instrument(ctx, "set_course_enabled", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			cell = tx.SetAssignmentEnabled(courseID, orgID, enabled)
			return nil
		})
		return err
	})
	return cell, res, err
}

// SetCourseValue writes a cell's value and forces the cell enabled.
func (s *Service) SetCourseValue(ctx context.Context, courseID, orgID, value string) (Assignment, Result, error) {
	var cell Assignment
	var res Result
	err := s.instrument(ctx, "set_course_value", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			cell = tx.SetAssignmentValue(courseID, orgID, value)
			return nil
		})
		return err
	})
	return cell, res, err
}

// ClearMatrix empties the assignment matrix.
func (s *Service) ClearMatrix(ctx context.Context) (Result, error) {
	var res Result
	err := s.instrument(ctx, "clear_matrix", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			tx.ClearAssignments()
			return nil
		})
		return err
	})
	return res, err
}

// Assignment reads one committed cell; missing cells read as the zero value.
func (s *Service) Assignment(courseID, orgID string) Assignment {
	return s.store.Assignment(courseID, orgID)
}

// MatrixSnapshot returns a deep copy of the committed matrix.
func (s *Service) MatrixSnapshot() Matrix {
	return s.store.MatrixSnapshot()
}

// Dashboard computes the aggregate view over current committed state.
func (s *Service) Dashboard() DashboardSummary {
	return Summarize(s.ListOrganizations(), s.MatrixSnapshot(), s.catalog)
}
