package editor

import (
	"context"

	"orgmatrix/pkg/domain"
)

// State describes where a draft sits relative to the committed store value.
type State string

const (
	// StateClean means the draft matches the last-synced store value.
	StateClean State = "clean"
	// StateDirty means the draft has uncommitted local edits.
	StateDirty State = "dirty"
	// StateSaving means a commit is in flight.
	StateSaving State = "saving"
)

// MatrixWriter is the slice of the core service a cell draft needs. The
// draft holds a read reference to the store value for its key, never
// ownership: Refresh always resyncs from the store.
type MatrixWriter interface {
	Assignment(courseID, orgID string) domain.Assignment
	SetCourseEnabled(ctx context.Context, courseID, orgID string, enabled bool) (domain.Assignment, domain.Result, error)
	SetCourseValue(ctx context.Context, courseID, orgID, value string) (domain.Assignment, domain.Result, error)
}

// Cell is a short-lived draft for one (course, organization) matrix cell.
type Cell struct {
	store    MatrixWriter
	courseID string
	orgID    string

	base  domain.Assignment
	draft domain.Assignment
	state State
}

// NewCell builds a draft synced to the current store value for the key.
func NewCell(store MatrixWriter, courseID, orgID string) *Cell {
	c := &Cell{store: store, courseID: courseID, orgID: orgID}
	c.Refresh()
	return c
}

// CourseID returns the course axis of the cell key.
func (c *Cell) CourseID() string { return c.courseID }

// OrganizationID returns the organization axis of the cell key.
func (c *Cell) OrganizationID() string { return c.orgID }

// State reports the current draft state.
func (c *Cell) State() State { return c.state }

// Draft returns the local uncommitted value.
func (c *Cell) Draft() domain.Assignment { return c.draft }

// Base returns the last-synced store value.
func (c *Cell) Base() domain.Assignment { return c.base }

// Refresh resyncs the draft from the store, discarding local edits. The
// store value always wins over an open draft.
func (c *Cell) Refresh() {
	c.base = c.store.Assignment(c.courseID, c.orgID)
	c.draft = c.base
	c.state = StateClean
}

// SetEnabled edits the draft's enabled flag. Disabling clears the draft
// value, mirroring the committed write semantics.
func (c *Cell) SetEnabled(enabled bool) {
	c.draft.Enabled = enabled
	if !enabled {
		c.draft.Value = ""
	}
	c.reconcile()
}

// SetValue filters raw input through SanitizeNumeric and edits the draft
// value. A value edit always enables the draft.
func (c *Cell) SetValue(raw string) {
	c.draft.Value = SanitizeNumeric(raw)
	c.draft.Enabled = true
	c.reconcile()
}

func (c *Cell) reconcile() {
	if c.draft == c.base {
		c.state = StateClean
	} else {
		c.state = StateDirty
	}
}

// Commit writes the draft through the service: enabled flag first, then the
// value when the draft is enabled. A clean draft is a no-op. On failure the
// draft returns to Dirty with local edits intact.
func (c *Cell) Commit(ctx context.Context) error {
	if c.state == StateClean {
		return nil
	}
	c.state = StateSaving

	committed, _, err := c.store.SetCourseEnabled(ctx, c.courseID, c.orgID, c.draft.Enabled)
	if err != nil {
		c.state = StateDirty
		return err
	}
	if c.draft.Enabled {
		committed, _, err = c.store.SetCourseValue(ctx, c.courseID, c.orgID, c.draft.Value)
		if err != nil {
			c.state = StateDirty
			return err
		}
	}

	c.base = committed
	c.draft = committed
	c.state = StateClean
	return nil
}
