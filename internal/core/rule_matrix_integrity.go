package core

import (
	"context"
	"fmt"

	"orgmatrix/pkg/domain"
)

// MatrixIntegrityRule blocks commits that leave matrix cells referencing an
// organization absent from the collection. Combined with the composite delete
// in the service, this guarantees a removed organization never strands cells.
func MatrixIntegrityRule() domain.Rule {
	return matrixIntegrityRule{}
}

type matrixIntegrityRule struct{}

func (matrixIntegrityRule) Name() string { return "matrix_org_integrity" }

func (matrixIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	if len(changes) == 0 {
		return res, nil
	}

	known := make(map[string]struct{})
	for _, org := range view.ListOrganizations() {
		known[org.ID] = struct{}{}
	}

	for courseID, row := range view.MatrixSnapshot() {
		for orgID := range row {
			if _, ok := known[orgID]; !ok {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "matrix_org_integrity",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("course %s has a cell for missing organization %s", courseID, orgID),
					Entity:   domain.EntityAssignment,
					EntityID: orgID,
				})
			}
		}
	}
	return res, nil
}
