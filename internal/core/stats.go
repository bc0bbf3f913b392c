package core

import (
	"math"
	"sort"
)

// Aggregations are pure and uncached: callers pass the committed snapshot
// they want summarized.

const dashboardTopN = 5

// Percentage returns round(100*n/d), guarding a zero or negative denominator
// as 0.
func Percentage(n, d int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(d)))
}

// WhiteLabeledCount counts organizations flagged as white labeled.
func WhiteLabeledCount(orgs []Organization) int {
	count := 0
	for _, org := range orgs {
		if org.WhiteLabeled {
			count++
		}
	}
	return count
}

// EnabledCourseCount returns the number of enabled cells in the
// organization's matrix column.
func EnabledCourseCount(m Matrix, orgID string) int {
	count := 0
	for _, row := range m {
		if cell, ok := row[orgID]; ok && cell.Enabled {
			count++
		}
	}
	return count
}

// CourseCount pairs a catalog course with its enabled-organization count.
type CourseCount struct {
	Course  Course `json:"course"`
	Enabled int    `json:"enabled"`
}

// TopCourses returns the n courses with the most enabled organizations,
// descending. Ties keep catalog order.
func TopCourses(m Matrix, catalog []Course, n int) []CourseCount {
	counts := make([]CourseCount, 0, len(catalog))
	for _, course := range catalog {
		enabled := 0
		for _, cell := range m[course.ID] {
			if cell.Enabled {
				enabled++
			}
		}
		counts = append(counts, CourseCount{Course: course, Enabled: enabled})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Enabled > counts[j].Enabled
	})
	if n >= 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// RecentOrganizations returns the n most recently updated organizations,
// newest first. Equal stamps keep collection order.
func RecentOrganizations(orgs []Organization, n int) []Organization {
	out := append([]Organization(nil), orgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// DashboardSummary aggregates the headline numbers for the dashboard view.
type DashboardSummary struct {
	TotalOrganizations  int            `json:"totalOrganizations"`
	WhiteLabeled        int            `json:"whiteLabeled"`
	WhiteLabeledPercent int            `json:"whiteLabeledPercent"`
	EnabledAssignments  int            `json:"enabledAssignments"`
	TopCourses          []CourseCount  `json:"topCourses"`
	RecentOrganizations []Organization `json:"recentOrganizations"`
}

// Summarize computes the dashboard aggregate over one snapshot.
func Summarize(orgs []Organization, m Matrix, catalog []Course) DashboardSummary {
	whiteLabeled := WhiteLabeledCount(orgs)
	return DashboardSummary{
		TotalOrganizations:  len(orgs),
		WhiteLabeled:        whiteLabeled,
		WhiteLabeledPercent: Percentage(whiteLabeled, len(orgs)),
		EnabledAssignments:  m.EnabledCount(),
		TopCourses:          TopCourses(m, catalog, dashboardTopN),
		RecentOrganizations: RecentOrganizations(orgs, dashboardTopN),
	}
}
