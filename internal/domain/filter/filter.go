// Package filter decides which monuments match the user's filter controls.
package filter

import (
	"net/url"
	"strings"

	"github.com/okian/hiddengems/internal/domain/point"
)

// Query parameter names understood by FromValues.
const (
	ParamQuery    = "q"
	ParamYear     = "year"
	ParamPrize    = "prize"
	ParamCategory = "category"
)

// State holds the four independent filter constraints. An empty field is unset.
type State struct {
	Query    string `json:"q"`
	Year     string `json:"year"`
	Prize    string `json:"prize"`
	Category string `json:"category"`
}

// IsZero reports whether no constraint is set (the reset state).
func (s State) IsZero() bool {
	return strings.TrimSpace(s.Query) == "" && s.Year == "" && s.Prize == "" && s.Category == ""
}

// FromValues reads a State from URL query values.
func FromValues(v url.Values) State {
	return State{
		Query:    v.Get(ParamQuery),
		Year:     v.Get(ParamYear),
		Prize:    v.Get(ParamPrize),
		Category: v.Get(ParamCategory),
	}
}

// Values encodes the set fields of s as URL query values.
func (s State) Values() url.Values {
	v := url.Values{}
	for k, val := range map[string]string{
		ParamQuery:    s.Query,
		ParamYear:     s.Year,
		ParamPrize:    s.Prize,
		ParamCategory: s.Category,
	} {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Matches reports whether props satisfy every constraint in s.
// The query is trimmed, lowercased and matched as a substring of the name or
// the notes; year, prize and category must match exactly. No diacritic folding
// is applied.
func Matches(props point.Properties, s State) bool {
	if q := strings.ToLower(strings.TrimSpace(s.Query)); q != "" {
		name := strings.ToLower(props.Name())
		notes := strings.ToLower(props.Notes())
		if !strings.Contains(name, q) && !strings.Contains(notes, q) {
			return false
		}
	}
	if s.Year != "" && props.Year() != s.Year {
		return false
	}
	if s.Prize != "" && props.Prize() != s.Prize {
		return false
	}
	if s.Category != "" && props.Category() != s.Category {
		return false
	}
	return true
}
