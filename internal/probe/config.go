package probe

import (
	"io"
	"time"

	"github.com/okian/hiddengems/internal/adapters/mapview"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/internal/domain/point"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Queries  int           // Free-text queries derived from marker names
	Verbose  bool          // Log every checked state
	Progress io.Writer     // Progress bar output; nil disables it
}

// Case is one filter state checked against the server.
type Case struct {
	State filter.State
}

// Result is what the server returned for a Case.
type Result struct {
	Case     Case
	Snapshot mapview.Snapshot
	Features []Feature
	Err      error
}

// Feature is the part of a GeoJSON feature the probe checks.
type Feature struct {
	ID         string
	Lon, Lat   float64
	Properties point.Properties
}

// Stats holds run statistics.
type Stats struct {
	Cases     int
	Requests  int64
	Failed    int64
	Mismatch  int
	Markers   int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
