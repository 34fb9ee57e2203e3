// Package point models monuments as loaded from the GeoJSON dataset.
package point

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// Recognized property keys.
const (
	KeyName      = "name"
	KeyCategory  = "category"
	KeyPrize     = "prize"
	KeyWinner    = "winner"
	KeySchool    = "school"
	KeyYear      = "year"
	KeyNotes     = "notes"
	KeyYouTubeID = "youtubeId"
)

// Properties is the open property mapping of a feature.
type Properties map[string]any

// Text returns the property as a string. Absent, null, empty, zero, false and
// structured values all read as "".
func (p Properties) Text(key string) string {
	if p == nil {
		return ""
	}
	v, ok := p[key]
	if !ok || isFalsy(v) {
		return ""
	}
	return Stringify(v)
}

// Name returns the monument name.
func (p Properties) Name() string { return p.Text(KeyName) }

// Category returns the monument category.
func (p Properties) Category() string { return p.Text(KeyCategory) }

// Prize resolves to prize when present and non-empty, else winner, else "".
func (p Properties) Prize() string {
	if v := p.Text(KeyPrize); v != "" {
		return v
	}
	return p.Text(KeyWinner)
}

// School returns the school that submitted the entry.
func (p Properties) School() string { return p.Text(KeySchool) }

// Year returns the contest year as text.
func (p Properties) Year() string { return p.Text(KeyYear) }

// Notes returns the free-text description.
func (p Properties) Notes() string { return p.Text(KeyNotes) }

// YouTubeID returns the video id of the winning clip.
func (p Properties) YouTubeID() string { return p.Text(KeyYouTubeID) }

// Clone returns a shallow copy safe to hand out to encoders.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Point is one feature of the dataset. Coordinates keep the source order:
// longitude first, then latitude.
type Point struct {
	Coordinates []float64
	Properties  Properties
}

// Valid reports whether the point has at least two coordinate components.
func (p Point) Valid() bool {
	return len(p.Coordinates) >= 2
}

// Position returns the point as an orb.Point (lon, lat). It must only be
// called on valid points.
func (p Point) Position() orb.Point {
	return orb.Point{p.Coordinates[0], p.Coordinates[1]}
}

// Dataset is the ordered, immutable list of loaded points, invalid ones included.
type Dataset struct {
	Points []Point
}

// Len returns the number of features in the dataset.
func (d Dataset) Len() int { return len(d.Points) }

// Valid returns the number of renderable points.
func (d Dataset) Valid() int {
	n := 0
	for _, p := range d.Points {
		if p.Valid() {
			n++
		}
	}
	return n
}

// Stringify converts a decoded JSON scalar to text. Numbers use the shortest
// decimal form (2023, 1.5); objects and arrays yield "".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0 || math.IsNaN(x)
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}
