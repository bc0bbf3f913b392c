package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"orgmatrix/pkg/domain"
)

func run(t *testing.T, store *Store, fn func(tx Transaction) error) Result {
	t.Helper()
	res, err := store.RunInTransaction(context.Background(), fn)
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	return res
}

func TestCreateOrganizationStampsAndPrepends(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.CreateOrganization(Organization{Name: "First", Code: "F1"})
		return nil
	})
	run(t, store, func(tx Transaction) error {
		tx.CreateOrganization(Organization{Name: "Second", Code: "S2"})
		return nil
	})

	orgs := store.ListOrganizations()
	if len(orgs) != 2 {
		t.Fatalf("expected 2 organizations, got %d", len(orgs))
	}
	if orgs[0].Name != "Second" {
		t.Fatalf("expected newest organization first, got %q", orgs[0].Name)
	}
	for _, org := range orgs {
		if org.ID == "" {
			t.Fatalf("expected generated id for %q", org.Name)
		}
		if org.CreatedAt.IsZero() || !org.UpdatedAt.Equal(org.CreatedAt) {
			t.Fatalf("expected identical created/updated stamps, got %v / %v", org.CreatedAt, org.UpdatedAt)
		}
	}
	if orgs[0].ID == orgs[1].ID {
		t.Fatalf("expected distinct ids")
	}
}

func TestUpdateOrganizationBumpsStampAndPreservesFields(t *testing.T) {
	store := NewStore(nil)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })

	var created Organization
	run(t, store, func(tx Transaction) error {
		created = tx.CreateOrganization(Organization{Name: "Acme", Code: "AC", Domain: "acme.test"})
		return nil
	})

	store.SetClock(func() time.Time { return base.Add(time.Hour) })
	run(t, store, func(tx Transaction) error {
		if _, ok := tx.UpdateOrganization(created.ID, func(o *Organization) { o.Name = "Acme Labs" }); !ok {
			t.Fatalf("expected update to find %s", created.ID)
		}
		return nil
	})

	got, ok := store.GetOrganization(created.ID)
	if !ok {
		t.Fatalf("organization missing after update")
	}
	if got.Name != "Acme Labs" || got.Code != "AC" || got.Domain != "acme.test" {
		t.Fatalf("unexpected record after update: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("expected updatedAt %v to advance past createdAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateMissingOrganizationIsNoop(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.CreateOrganization(Organization{Name: "Only"})
		return nil
	})
	before := store.ListOrganizations()

	run(t, store, func(tx Transaction) error {
		if _, ok := tx.UpdateOrganization("missing-id", func(o *Organization) { o.Name = "X" }); ok {
			t.Fatalf("expected missing id to report not found")
		}
		return nil
	})

	after := store.ListOrganizations()
	if len(after) != len(before) || after[0].Name != before[0].Name || !after[0].UpdatedAt.Equal(before[0].UpdatedAt) {
		t.Fatalf("expected collection unchanged, before=%+v after=%+v", before, after)
	}
}

func TestSetAssignmentEnabledLifecycle(t *testing.T) {
	store := NewStore(nil)

	run(t, store, func(tx Transaction) error {
		cell := tx.SetAssignmentEnabled("course_fe", "org_1", true)
		if !cell.Enabled || cell.Value != "" {
			t.Fatalf("unexpected cell after enable: %+v", cell)
		}
		return nil
	})
	run(t, store, func(tx Transaction) error {
		cell := tx.SetAssignmentValue("course_fe", "org_1", "299")
		if !cell.Enabled || cell.Value != "299" {
			t.Fatalf("unexpected cell after set value: %+v", cell)
		}
		return nil
	})
	run(t, store, func(tx Transaction) error {
		cell := tx.SetAssignmentEnabled("course_fe", "org_1", false)
		if cell.Enabled || cell.Value != "" {
			t.Fatalf("disable must clear value, got %+v", cell)
		}
		return nil
	})

	if got := store.Assignment("course_fe", "org_1"); got.Enabled || got.Value != "" {
		t.Fatalf("unexpected committed cell: %+v", got)
	}
}

func TestSetAssignmentValueForcesEnabled(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.SetAssignmentEnabled("course_db", "org_9", false)
		tx.SetAssignmentValue("course_db", "org_9", "free")
		return nil
	})
	cell := store.Assignment("course_db", "org_9")
	if !cell.Enabled || cell.Value != "free" {
		t.Fatalf("expected enabled cell with value, got %+v", cell)
	}
}

func TestMissingCellReadsAsZeroAssignment(t *testing.T) {
	store := NewStore(nil)
	if cell := store.Assignment("course_none", "org_none"); cell.Enabled || cell.Value != "" {
		t.Fatalf("expected zero assignment, got %+v", cell)
	}
}

func TestRemoveOrganizationAssignmentsIsScopedAndIdempotent(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.SetAssignmentEnabled("course_db", "org_1", true)
		tx.SetAssignmentEnabled("course_db", "org_2", true)
		tx.SetAssignmentValue("course_fe", "org_1", "500")
		return nil
	})

	run(t, store, func(tx Transaction) error {
		if !tx.RemoveOrganizationAssignments("org_1") {
			t.Fatalf("expected removal to report cells dropped")
		}
		return nil
	})
	first := store.MatrixSnapshot()
	if _, ok := first["course_db"]["org_1"]; ok {
		t.Fatalf("org_1 cell survived cascade")
	}
	if cell := first.Cell("course_db", "org_2"); !cell.Enabled {
		t.Fatalf("org_2 cell disturbed by cascade: %+v", cell)
	}
	if _, ok := first["course_fe"]; ok {
		t.Fatalf("expected empty course_fe row to be dropped")
	}

	run(t, store, func(tx Transaction) error {
		if tx.RemoveOrganizationAssignments("org_1") {
			t.Fatalf("second removal should find nothing")
		}
		return nil
	})
	second := store.MatrixSnapshot()
	if len(second) != len(first) || len(second["course_db"]) != len(first["course_db"]) {
		t.Fatalf("second removal changed the matrix: %+v vs %+v", second, first)
	}
}

func TestClearAssignments(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.SetAssignmentValue("course_ai", "org_1", "7000")
		tx.ClearAssignments()
		return nil
	})
	if m := store.MatrixSnapshot(); len(m) != 0 {
		t.Fatalf("expected empty matrix, got %+v", m)
	}
}

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.CreateOrganization(Organization{Name: "Roundtrip", Code: "RT"})
		tx.SetAssignmentValue("course_fe", "org_rt", "299")
		return nil
	})

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	orgs := restored.ListOrganizations()
	if len(orgs) != 1 || orgs[0].Name != "Roundtrip" {
		t.Fatalf("unexpected organizations after import: %+v", orgs)
	}
	if cell := restored.Assignment("course_fe", "org_rt"); !cell.Enabled || cell.Value != "299" {
		t.Fatalf("unexpected cell after import: %+v", cell)
	}

	// The exported snapshot must be detached from live state.
	snapshot.Organizations[0].Name = "Mutated"
	if got, _ := store.GetOrganization(orgs[0].ID); got.Name != "Roundtrip" {
		t.Fatalf("snapshot mutation leaked into store: %+v", got)
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	if len(changes) == 0 {
		return Result{}, nil
	}
	return Result{Violations: []domain.Violation{{
		Rule:     "block_all",
		Severity: domain.SeverityBlock,
		Message:  "no mutations allowed",
	}}}, nil
}

func TestBlockingViolationAbortsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)

	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		tx.CreateOrganization(Organization{Name: "Blocked"})
		return nil
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result, got %+v", res)
	}
	if got := store.ListOrganizations(); len(got) != 0 {
		t.Fatalf("blocked transaction leaked state: %+v", got)
	}
}

func TestTransactionErrorDiscardsChanges(t *testing.T) {
	store := NewStore(nil)
	wantErr := errors.New("caller abort")
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		tx.SetAssignmentEnabled("course_fe", "org_1", true)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected caller error, got %v", err)
	}
	if m := store.MatrixSnapshot(); len(m) != 0 {
		t.Fatalf("aborted transaction leaked state: %+v", m)
	}
}

func TestSharedTimestampWithinTransaction(t *testing.T) {
	store := NewStore(nil)
	var a, b Organization
	run(t, store, func(tx Transaction) error {
		a = tx.AppendOrganization(Organization{Name: "Sample College 1", Code: "SC1"})
		b = tx.AppendOrganization(Organization{Name: "Sample College 2", Code: "SC2"})
		return nil
	})
	if !a.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("expected one generation timestamp, got %v and %v", a.CreatedAt, b.CreatedAt)
	}
	orgs := store.ListOrganizations()
	if orgs[0].Code != "SC1" || orgs[1].Code != "SC2" {
		t.Fatalf("append must preserve ordinal order, got %+v", orgs)
	}
}

func TestReplaceOrganizations(t *testing.T) {
	store := NewStore(nil)
	run(t, store, func(tx Transaction) error {
		tx.CreateOrganization(Organization{Name: "Old"})
		return nil
	})
	seedTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seeded := []Organization{{ID: "org_seed", Name: "Seed U", Code: "SEED", CreatedAt: seedTime, UpdatedAt: seedTime}}
	run(t, store, func(tx Transaction) error {
		tx.ReplaceOrganizations(seeded)
		return nil
	})
	orgs := store.ListOrganizations()
	if len(orgs) != 1 || orgs[0].ID != "org_seed" {
		t.Fatalf("unexpected collection after replace: %+v", orgs)
	}
}
