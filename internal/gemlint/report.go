// Package gemlint checks a monuments dataset the way the map would load it
// and reports what would be dropped or left blank.
package gemlint

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/hiddengems/internal/adapters/source"
	"github.com/okian/hiddengems/internal/domain/collate"
	"github.com/okian/hiddengems/internal/domain/point"
	"github.com/pterm/pterm"
)

// Drop reasons.
const (
	ReasonNoCoordinates = "no coordinates"
	ReasonShort         = "fewer than two numeric coordinates"
)

// Issue is a feature the map would not show.
type Issue struct {
	Index  int
	Name   string
	Reason string
}

// Report summarizes a dataset.
type Report struct {
	Source  string
	Points  int
	Valid   int
	Dropped []Issue
	Options collate.OptionSet

	// Missing counts valid points without a value for each field.
	Missing map[string]int
}

// fields checked for blanks, in report order.
var fields = []struct {
	key string
	get func(point.Properties) string
}{
	{point.KeyName, point.Properties.Name},
	{point.KeyYear, point.Properties.Year},
	{point.KeyCategory, point.Properties.Category},
	{"prize/winner", point.Properties.Prize},
	{point.KeyYouTubeID, point.Properties.YouTubeID},
}

// Check fetches src and builds its report.
func Check(ctx context.Context, src source.Source, sorter *collate.Sorter) (Report, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return Report{}, err
	}
	ds, err := point.Parse(data)
	if err != nil {
		return Report{}, &point.LoadError{Source: src.String(), Err: err}
	}
	r := Analyze(ds, sorter)
	r.Source = src.String()
	return r, nil
}

// Analyze builds the report of ds.
func Analyze(ds point.Dataset, sorter *collate.Sorter) Report {
	r := Report{
		Points:  ds.Len(),
		Options: sorter.Options(ds),
		Missing: make(map[string]int, len(fields)),
	}
	for i, p := range ds.Points {
		if !p.Valid() {
			reason := ReasonShort
			if len(p.Coordinates) == 0 {
				reason = ReasonNoCoordinates
			}
			r.Dropped = append(r.Dropped, Issue{Index: i, Name: p.Properties.Name(), Reason: reason})
			continue
		}
		r.Valid++
		for _, f := range fields {
			if f.get(p.Properties) == "" {
				r.Missing[f.key]++
			}
		}
	}
	return r
}

// Render writes the report as pterm sections and tables.
func (r Report) Render(w io.Writer) error {
	var b strings.Builder

	b.WriteString(pterm.DefaultSection.Sprint("Dataset " + r.Source))
	b.WriteString(pterm.Info.Sprintfln("%d features, %d valid, %d dropped", r.Points, r.Valid, len(r.Dropped)))

	if len(r.Dropped) > 0 {
		data := pterm.TableData{{"#", "Name", "Reason"}}
		for _, d := range r.Dropped {
			data = append(data, []string{strconv.Itoa(d.Index), d.Name, d.Reason})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return fmt.Errorf("render dropped table: %w", err)
		}
		b.WriteString(pterm.DefaultSection.WithLevel(2).Sprint("Dropped"))
		b.WriteString(table + "\n")
	}

	blanks := pterm.TableData{{"Field", "Blank"}}
	for _, f := range fields {
		blanks = append(blanks, []string{f.key, strconv.Itoa(r.Missing[f.key])})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(blanks).Srender()
	if err != nil {
		return fmt.Errorf("render blanks table: %w", err)
	}
	b.WriteString(pterm.DefaultSection.WithLevel(2).Sprint("Blank fields on valid points"))
	b.WriteString(table + "\n")

	b.WriteString(pterm.DefaultSection.WithLevel(2).Sprint("Filter options"))
	b.WriteString(optionLine("Years", r.Options.Years))
	b.WriteString(optionLine("Prizes", r.Options.Prizes))
	b.WriteString(optionLine("Categories", r.Options.Categories))

	if len(r.Dropped) == 0 {
		b.WriteString(pterm.Success.Sprintln("every feature has usable coordinates"))
	} else {
		b.WriteString(pterm.Warning.Sprintfln("%d feature(s) will not appear on the map", len(r.Dropped)))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func optionLine(label string, values []string) string {
	if len(values) == 0 {
		return fmt.Sprintf("%s: -\n", label)
	}
	return fmt.Sprintf("%s: %s\n", label, strings.Join(values, " | "))
}
