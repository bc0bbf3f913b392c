package core

import (
	"context"
	"fmt"

	"orgmatrix/pkg/domain"
)

// AssignmentValueRule blocks commits where a disabled cell carries a value.
// The transaction primitives already maintain this invariant; the rule guards
// against hydrated snapshots and future mutation paths drifting from it.
func AssignmentValueRule() domain.Rule {
	return assignmentValueRule{}
}

type assignmentValueRule struct{}

func (assignmentValueRule) Name() string { return "assignment_value_consistency" }

func (assignmentValueRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if len(changes) == 0 {
		return res, nil
	}

	for courseID, row := range view.MatrixSnapshot() {
		for orgID, cell := range row {
			if !cell.Enabled && cell.Value != "" {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "assignment_value_consistency",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("disabled cell (%s, %s) carries value %q", courseID, orgID, cell.Value),
					Entity:   domain.EntityAssignment,
					EntityID: orgID,
				})
			}
		}
	}
	return res, nil
}
