package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"orgmatrix/internal/api"
	"orgmatrix/internal/core"
	"orgmatrix/internal/infra/persistence/memory"
	"orgmatrix/internal/infra/persistence/sqlite"
	"orgmatrix/pkg/domain"
)

// TestIntegrationSmoke runs one full seed/edit/cascade cycle against each
// in-process storage backend, through the service and the HTTP surface. It
// intentionally keeps scope tiny so it can act as a fast CI health check.
func TestIntegrationSmoke(t *testing.T) {
	variants := []struct {
		name string
		open func(t *testing.T) core.PersistentStore
	}{
		{
			name: "memory-store",
			open: func(_ *testing.T) core.PersistentStore {
				return memory.NewStore(core.DefaultRulesEngine())
			},
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) core.PersistentStore {
				path := filepath.Join(t.TempDir(), "orgmatrix.db")
				s, err := sqlite.NewStore(path, core.DefaultRulesEngine())
				if err != nil {
					t.Fatalf("new sqlite store: %v", err)
				}
				return s
			},
		},
	}

	for _, variant := range variants {
		t.Run(variant.name, func(t *testing.T) {
			ctx := context.Background()
			store := variant.open(t)
			defer store.Close()
			svc := core.NewService(store)

			seeded, err := svc.EnsureSeed(ctx)
			if err != nil || !seeded {
				t.Fatalf("seed: seeded=%v err=%v", seeded, err)
			}
			seedLen := len(svc.ListOrganizations())
			if seedLen == 0 {
				t.Fatalf("seed produced no organizations")
			}

			org, _, err := svc.CreateOrganization(ctx, domain.Organization{Name: "Smoke U", Code: "SMK"})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, _, err := svc.SetCourseValue(ctx, "course_fe", org.ID, "450"); err != nil {
				t.Fatalf("set value: %v", err)
			}
			if cell := svc.Assignment("course_fe", org.ID); !cell.Enabled || cell.Value != "450" {
				t.Fatalf("unexpected cell: %+v", cell)
			}

			// Exercise the HTTP surface over the same service.
			h := api.NewServer(svc).Routes()
			req := httptest.NewRequest(http.MethodPut, "/api/v1/matrix/course_fe/"+org.ID+"/enabled", strings.NewReader(`{"enabled":false}`))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("disable over http: status %d body %s", rec.Code, rec.Body)
			}
			if cell := svc.Assignment("course_fe", org.ID); cell.Enabled || cell.Value != "" {
				t.Fatalf("disable must clear the value: %+v", cell)
			}

			if deleted, _, err := svc.DeleteOrganization(ctx, org.ID); err != nil || !deleted {
				t.Fatalf("delete: deleted=%v err=%v", deleted, err)
			}
			if len(svc.ListOrganizations()) != seedLen {
				t.Fatalf("collection must shrink back to the seed set")
			}
			for courseID, row := range svc.MatrixSnapshot() {
				if _, ok := row[org.ID]; ok {
					t.Fatalf("course %s retains a cell for the deleted organization", courseID)
				}
			}
		})
	}
}
