package view

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/okian/hiddengems/internal/domain/point"
	"github.com/okian/hiddengems/internal/domain/popup"
	"github.com/paulmach/orb"
)

// markerNamespace scopes marker IDs so the same feature always maps to the same ID.
var markerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://hiddengems.arad/markers"))

// Marker pairs a valid point with its map representation. Markers are built
// once at load and never mutated.
type Marker struct {
	ID       string
	Index    int
	Position orb.Point
	Props    point.Properties
	Popup    string
}

// Lat returns the marker latitude.
func (m Marker) Lat() float64 { return m.Position.Lat() }

// Lng returns the marker longitude.
func (m Marker) Lng() float64 { return m.Position.Lon() }

// NewMarker builds the marker for the feature at index. ok is false for
// invalid points, which are dropped without error.
func NewMarker(index int, p point.Point) (Marker, bool) {
	if !p.Valid() {
		return Marker{}, false
	}
	pos := p.Position()
	key := strconv.Itoa(index) + "|" +
		strconv.FormatFloat(pos.Lon(), 'g', -1, 64) + "|" +
		strconv.FormatFloat(pos.Lat(), 'g', -1, 64)
	return Marker{
		ID:       uuid.NewSHA1(markerNamespace, []byte(key)).String(),
		Index:    index,
		Position: pos,
		Props:    p.Properties,
		Popup:    popup.Render(p.Properties),
	}, true
}

// Build creates one marker per valid point of ds, in dataset order, and
// returns how many points were dropped.
func Build(ds point.Dataset) ([]Marker, int) {
	markers := make([]Marker, 0, len(ds.Points))
	dropped := 0
	for i, p := range ds.Points {
		m, ok := NewMarker(i, p)
		if !ok {
			dropped++
			continue
		}
		markers = append(markers, m)
	}
	return markers, dropped
}
