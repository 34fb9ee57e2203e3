package probe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/hiddengems/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var w io.Writer = os.Stdout
	done := func() {}
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		done = func() { _ = file.Close() }
	}
	if err := logger.InitWithWriter(w); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return done, nil
}

// DefaultConfig returns the settings used when no flag overrides them.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9080",
		Workers: 4,
		Timeout: 10 * time.Second,
		Queries: 5,
	}
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Hidden Gems Map Probe
=====================

Checks a running map server: every year, prize and category option is
requested as a filter, and the returned markers are checked against the
filter, the GeoJSON subset and the viewport.

Usage:
  probe [options]

Options:
  -url string       Base URL of the service (default "http://localhost:9080")
  -workers int      Number of concurrent workers (default 4)
  -timeout duration HTTP request timeout (default 10s)
  -queries int      Free-text queries taken from marker names (default 5)
  -log string       Also write the log to this file
  -verbose          Log every checked filter
  -help             Show this help message
`)
}
