// Package collate builds the sorted option lists of the filter controls.
package collate

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/hiddengems/internal/domain/point"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the collation used for the option lists.
var DefaultLocale = language.Romanian

// Accessor selects the property an option list is built from.
type Accessor func(point.Properties) string

// Standard accessors.
var (
	Year     Accessor = point.Properties.Year
	Prize    Accessor = point.Properties.Prize
	Category Accessor = point.Properties.Category
)

// OptionSet holds the option lists of the three selection controls.
type OptionSet struct {
	Years      []string `json:"years"`
	Prizes     []string `json:"prizes"`
	Categories []string `json:"categories"`
}

// Sorter orders option values: two numeric values compare numerically,
// anything else compares with the locale's collation.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter for tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// Sort orders values in place.
func (s *Sorter) Sort(values []string) {
	// collate.Collator keeps scratch buffers; one per call keeps Sorter shareable.
	c := collate.New(s.tag)
	sort.SliceStable(values, func(i, j int) bool {
		a, b := values[i], values[j]
		na, okA := numeric(a)
		nb, okB := numeric(b)
		if okA && okB {
			return na < nb
		}
		return c.CompareString(a, b) < 0
	})
}

// Values returns the distinct non-empty values selected by get, sorted.
func (s *Sorter) Values(points []point.Point, get Accessor) []string {
	seen := make(map[string]struct{}, len(points))
	out := make([]string, 0, len(points))
	for _, p := range points {
		v := get(p.Properties)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	s.Sort(out)
	return out
}

// Options builds the year, prize and category lists of ds.
func (s *Sorter) Options(ds point.Dataset) OptionSet {
	return OptionSet{
		Years:      s.Values(ds.Points, Year),
		Prizes:     s.Values(ds.Points, Prize),
		Categories: s.Values(ds.Points, Category),
	}
}

// Values is a convenience for NewSorter(DefaultLocale).Values.
func Values(points []point.Point, get Accessor) []string {
	return NewSorter(DefaultLocale).Values(points, get)
}

// numeric reports whether s reads as a number the way a browser's Number()
// reads it. Only the exact spelling "Infinity" is infinite. 0x, 0o and 0b
// prefixes take unsigned integers; hex floats and "inf" are not numbers.
func numeric(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	switch t {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(t) > 2 && t[0] == '0' {
		if base := radix(t[1]); base != 0 {
			n, err := strconv.ParseUint(t[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(f) || (math.IsInf(f, 0) && err == nil) {
		return 0, false
	}
	return f, true
}

func radix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}
