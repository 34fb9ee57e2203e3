// Package probe checks a running map server end to end: every option value is
// requested as a filter, and the returned markers are checked against the
// filter and the viewport.
package probe

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/okian/hiddengems/internal/domain/collate"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run executes the complete probe.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("probe")
	client := NewHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting map probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int("queries", config.Queries))

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	log.Info(ctx, "service is healthy")

	// Step 2: Fetch the option lists
	opts, err := client.Options(ctx)
	if err != nil {
		return stats, fmt.Errorf("options: %w", err)
	}

	// Step 3: Fetch the reset state
	all := fetch(ctx, client, Case{})
	atomic.AddInt64(&stats.Requests, 2)
	if all.Err != nil {
		return stats, fmt.Errorf("reset state: %w", all.Err)
	}
	stats.Markers = len(all.Snapshot.Markers)

	// Step 4: Check every case concurrently
	cases := Cases(opts, all.Features, config.Queries)
	stats.Cases = len(cases) + 1
	results := runCases(ctx, client, config, cases, stats)

	// Step 5: Verify results
	problems := Verify(all, results)
	stats.Mismatch = len(problems)
	for _, p := range problems {
		log.Warn(ctx, "mismatch", logger.String("detail", p))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d requests failed", stats.Failed)
	}
	if len(problems) > 0 {
		return stats, fmt.Errorf("%w: %d problems", ErrMismatch, len(problems))
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// Cases builds one filter state per option value, plus free-text queries
// taken from the first word of up to queries marker names.
func Cases(opts collate.OptionSet, features []Feature, queries int) []Case {
	var cases []Case
	for _, y := range opts.Years {
		cases = append(cases, Case{State: filter.State{Year: y}})
	}
	for _, p := range opts.Prizes {
		cases = append(cases, Case{State: filter.State{Prize: p}})
	}
	for _, c := range opts.Categories {
		cases = append(cases, Case{State: filter.State{Category: c}})
	}
	seen := map[string]bool{}
	for _, f := range features {
		if len(seen) >= queries {
			break
		}
		words := strings.Fields(f.Properties.Name())
		if len(words) == 0 {
			continue
		}
		q := strings.ToLower(words[0])
		if seen[q] {
			continue
		}
		seen[q] = true
		cases = append(cases, Case{State: filter.State{Query: q}})
	}
	return cases
}

func runCases(ctx context.Context, client *HTTPClient, config *Config, cases []Case, stats *Stats) []Result {
	results := make([]Result, len(cases))
	bar := newProgress(config.Progress, len(cases))

	var g errgroup.Group
	g.SetLimit(max(config.Workers, 1))
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			res := fetch(ctx, client, c)
			atomic.AddInt64(&stats.Requests, 2)
			if res.Err != nil {
				atomic.AddInt64(&stats.Failed, 1)
			}
			if config.Verbose {
				logger.Get().Debug(ctx, "case checked",
					logger.Any("filter", res.Case.State),
					logger.Int("markers", len(res.Snapshot.Markers)),
					logger.Error(res.Err))
			}
			results[i] = res
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		bar.Finish()
	}
	return results
}

// newProgress returns a bar over total cases drawn on w, or nil when w is nil.
func newProgress(w io.Writer, total int) *pb.ProgressBar {
	if w == nil {
		return nil
	}
	return pb.New(total).SetWriter(w).Start()
}

func fetch(ctx context.Context, client *HTTPClient, c Case) Result {
	res := Result{Case: c}
	if res.Snapshot, res.Err = client.Markers(ctx, c.State); res.Err != nil {
		return res
	}
	res.Features, res.Err = client.Features(ctx, c.State)
	return res
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("cases", stats.Cases),
		logger.Int("markers", stats.Markers),
		logger.Int("requests", int(stats.Requests)),
		logger.Int("failed", int(stats.Failed)),
		logger.Int("mismatches", stats.Mismatch),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond))
}
