package probe

import (
	"fmt"

	"github.com/okian/hiddengems/internal/adapters/mapview"
	"github.com/okian/hiddengems/internal/domain/filter"
)

// Verify checks each result against the reset state and returns one line per
// problem found. Failed requests are not verified.
func Verify(all Result, results []Result) []string {
	problems := check(all)
	total := len(all.Snapshot.Markers)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		problems = append(problems, check(r)...)
		if n := len(r.Snapshot.Markers); n > total {
			problems = append(problems, fmt.Sprintf("%s: %d markers, reset state has %d", label(r.Case), n, total))
		}
	}
	return problems
}

func check(r Result) []string {
	var out []string
	name := label(r.Case)

	if len(r.Snapshot.Markers) != len(r.Features) {
		out = append(out, fmt.Sprintf("%s: %d markers but %d features", name, len(r.Snapshot.Markers), len(r.Features)))
	}

	ids := make(map[string]bool, len(r.Features))
	for _, f := range r.Features {
		ids[f.ID] = true
		if !filter.Matches(f.Properties, r.Case.State) {
			out = append(out, fmt.Sprintf("%s: feature %q does not match", name, f.Properties.Name()))
		}
	}

	for _, m := range r.Snapshot.Markers {
		if !ids[m.ID] {
			out = append(out, fmt.Sprintf("%s: marker %s missing from features", name, m.ID))
		}
		if r.Snapshot.Bounds != nil && !inside(*r.Snapshot.Bounds, m) {
			out = append(out, fmt.Sprintf("%s: marker %s outside the viewport", name, m.ID))
		}
	}

	if len(r.Snapshot.Markers) > 0 && r.Snapshot.Bounds == nil {
		out = append(out, name+": markers shown without a viewport")
	}
	return out
}

func inside(b mapview.BoundsView, m mapview.MarkerView) bool {
	return m.Lat >= b.South && m.Lat <= b.North && m.Lng >= b.West && m.Lng <= b.East
}

func label(c Case) string {
	if v := c.State.Values(); len(v) > 0 {
		return v.Encode()
	}
	return "reset"
}
