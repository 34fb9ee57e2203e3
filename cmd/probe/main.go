package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/hiddengems/internal/probe"
)

const defaultProbeTimeout = 2 * time.Minute

func main() {
	def := probe.DefaultConfig()
	var (
		baseURL = flag.String("url", def.BaseURL, "Base URL of the service")
		workers = flag.Int("workers", def.Workers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", def.Timeout, "HTTP request timeout")
		queries = flag.Int("queries", def.Queries, "Free-text queries taken from marker names")
		logFile = flag.String("log", "", "Also write the log to this file")
		verbose = flag.Bool("verbose", false, "Log every checked filter")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	done, err := probe.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)

	config := &probe.Config{
		BaseURL: *baseURL,
		Workers: *workers,
		Timeout: *timeout,
		Queries: *queries,
		Verbose: *verbose,
	}
	if !*verbose {
		config.Progress = os.Stderr
	}

	_, err = probe.Run(ctx, config)
	cancel()
	done()
	if err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
