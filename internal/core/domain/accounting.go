package domain

import "time"

const (
	// RootWeight is recorded for a package the caller asked for directly.
	RootWeight = 3
	// DependencyWeight is recorded for a package pulled in transitively.
	DependencyWeight = 1
)

// dayLayout formats calendar days as YYYY-MM-DD.
const dayLayout = "2006-01-02"

// DownloadAccountingEntry is one first-time-today download of a package by a user.
type DownloadAccountingEntry struct {
	PackageID string
	Day       string
	UserHash  string
	Weight    int
}

// DailyUsage is the per-day accounting document of a package.
type DailyUsage struct {
	PackageID string
	Day       string
	// Users maps a user hash to the weight recorded for that user on Day.
	Users map[string]int
	Total int64
}

// DayKey returns the accounting day of t in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// DailyUsageKey returns the document key of a package's usage on day.
func DailyUsageKey(packageID, day string) string {
	return "analytics/" + packageID + "/downloads/" + day
}

// TotalUsageKey returns the document key of a package's running total.
func TotalUsageKey(packageID string) string {
	return "analytics/" + packageID + "/downloads/total"
}
