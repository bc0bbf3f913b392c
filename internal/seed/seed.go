// Package seed holds the static course catalog and the built-in demo
// organization set used for resets and sample generation.
package seed

import (
	"fmt"
	"time"

	"orgmatrix/pkg/domain"
)

// Courses returns the static course catalog in display order. The catalog is
// reference data: stores never mutate it and aggregation ties break by this
// order.
func Courses() []domain.Course {
	return []domain.Course{
		{ID: "course_fe", Name: "FE", Code: "FE"},
		{ID: "course_be", Name: "BE", Code: "BE"},
		{ID: "course_db", Name: "DB", Code: "DB"},
		{ID: "course_cloud", Name: "Cloud", Code: "CLOUD"},
		{ID: "course_ai", Name: "AI", Code: "AI"},
		{ID: "course_ml", Name: "ML", Code: "ML"},
		{ID: "course_ds", Name: "Data Science", Code: "DS"},
		{ID: "course_net", Name: "Networking", Code: "NET"},
		{ID: "course_sec", Name: "Security", Code: "SEC"},
		{ID: "course_math", Name: "Mathematics", Code: "MATH"},
		{ID: "course_eng", Name: "English", Code: "ENG"},
	}
}

var seededAt = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

// Organizations returns the built-in demo organization set. Records are fully
// formed (fixed ids and timestamps) so a reset always lands on the same state.
func Organizations() []domain.Organization {
	return []domain.Organization{
		{
			ID:           "org_aurora",
			Name:         "Aurora Institute",
			Code:         "AUR",
			Domain:       "aurora.ai-linc.app",
			WhiteLabeled: true,
			Branding:     domain.Branding{LogoURL: "https://dummyimage.com/120x40/1d4ed8/ffffff&text=AUR"},
			ContactEmail: "admin@aurora.example.com",
			CreatedAt:    seededAt,
			UpdatedAt:    seededAt,
		},
		{
			ID:           "org_northline",
			Name:         "Northline College",
			Code:         "NLC",
			Domain:       "northline.ai-linc.app",
			WhiteLabeled: true,
			Branding:     domain.Branding{LogoURL: "https://dummyimage.com/120x40/16a34a/ffffff&text=NLC"},
			ContactEmail: "admin@northline.example.com",
			CreatedAt:    seededAt,
			UpdatedAt:    seededAt,
		},
		{
			ID:           "org_brightpath",
			Name:         "Brightpath Academy",
			Code:         "BPA",
			Domain:       "brightpath.ai-linc.app",
			WhiteLabeled: false,
			ContactEmail: "admin@brightpath.example.com",
			CreatedAt:    seededAt,
			UpdatedAt:    seededAt,
		},
		{
			ID:           "org_westgate",
			Name:         "Westgate University",
			Code:         "WGU",
			Domain:       "westgate.ai-linc.app",
			WhiteLabeled: true,
			Branding:     domain.Branding{LogoURL: "https://dummyimage.com/120x40/f59e0b/ffffff&text=WGU"},
			ContactEmail: "admin@westgate.example.com",
			CreatedAt:    seededAt,
			UpdatedAt:    seededAt,
		},
	}
}

var samplePalette = []string{
	"16a34a", "1d4ed8", "f59e0b", "10b981", "3b82f6", "ef4444", "8b5cf6",
	"06b6d4", "0ea5e9", "22c55e", "f97316", "3f83f8", "64748b",
}

// SampleOrganization builds the generated sample client for ordinal idx
// (1-based position in the collection). The id and timestamps are left unset
// for the transaction to stamp.
func SampleOrganization(idx int) domain.Organization {
	color := samplePalette[idx%len(samplePalette)]
	return domain.Organization{
		Name:         fmt.Sprintf("Sample College %d", idx),
		Code:         fmt.Sprintf("SC%d", idx),
		Domain:       fmt.Sprintf("sc%d.ai-linc.app", idx),
		WhiteLabeled: true,
		Branding:     domain.Branding{LogoURL: fmt.Sprintf("https://dummyimage.com/120x40/%s/ffffff&text=SC%d", color, idx)},
		ContactEmail: fmt.Sprintf("admin+sc%d@example.com", idx),
	}
}
