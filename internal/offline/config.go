// Package offline computes reports from local bundle files without any
// network access.
package offline

import "time"

// Output formats for a computed report.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds configuration for one offline run.
type Config struct {
	BundlePath string // Bundle file, YAML or JSON
	OutputFile string // Optional file the JSON report is also written to
	Format     string // text or json on the output writer
	Currency   string // Overrides the bundle currency when set
	Verbose    bool   // Enable debug logging
}

// Stats holds run statistics.
type Stats struct {
	Snapshots int
	Gains     int
	Transfers int
	Clamps    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
