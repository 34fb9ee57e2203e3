// Package view keeps the map's visible marker set in sync with the filter state.
package view

import (
	"math"

	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/paulmach/orb"
)

// DefaultPadding is the viewport margin as a fraction of the bounds extent.
const DefaultPadding = 0.15

// Layer is the map collaborator: a marker group plus the viewport.
type Layer interface {
	// ClearLayers removes every marker from the visible group.
	ClearLayers()
	// AddLayer shows m.
	AddLayer(m Marker)
	// FitBounds moves the viewport so b is in view.
	FitBounds(b orb.Bound)
}

// Page is the UI collaborator driven by the core: it exposes the current
// filter controls, hosts the map layer and shows modal dialogs.
type Page interface {
	Layer
	FilterState() filter.State
	ShowModal(title, fragment string)
}

// Synchronizer replays the visible subset of a fixed marker set onto a Layer.
type Synchronizer struct {
	markers []Marker
	padding float64
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithPadding sets the viewport padding ratio. Negative values are ignored.
func WithPadding(ratio float64) Option {
	return func(s *Synchronizer) {
		if ratio >= 0 {
			s.padding = ratio
		}
	}
}

// NewSynchronizer returns a Synchronizer over markers.
func NewSynchronizer(markers []Marker, opts ...Option) *Synchronizer {
	s := &Synchronizer{markers: markers, padding: DefaultPadding}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the size of the full marker set.
func (s *Synchronizer) Len() int { return len(s.markers) }

// Refresh clears layer, adds exactly the markers matching state and, when
// any match, fits the viewport to their padded bounds. With no match the
// viewport is left alone. The visible markers are returned.
func (s *Synchronizer) Refresh(layer Layer, state filter.State) []Marker {
	visible := Visible(s.markers, state)

	layer.ClearLayers()
	for _, m := range visible {
		layer.AddLayer(m)
	}

	if b, ok := Bounds(visible); ok {
		layer.FitBounds(Pad(b, s.padding))
	}
	return visible
}

// Visible returns the markers whose properties match state, in order.
func Visible(markers []Marker, state filter.State) []Marker {
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if filter.Matches(m.Props, state) {
			out = append(out, m)
		}
	}
	return out
}

// Bounds returns the bounding box of markers. ok is false when empty.
func Bounds(markers []Marker) (orb.Bound, bool) {
	if len(markers) == 0 {
		return orb.Bound{}, false
	}
	mp := make(orb.MultiPoint, len(markers))
	for i, m := range markers {
		mp[i] = m.Position
	}
	return mp.Bound(), true
}

// Pad grows b by ratio of its width and height on every side.
func Pad(b orb.Bound, ratio float64) orb.Bound {
	dLon := math.Abs(b.Max.Lon()-b.Min.Lon()) * ratio
	dLat := math.Abs(b.Max.Lat()-b.Min.Lat()) * ratio
	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - dLon, b.Min.Lat() - dLat},
		Max: orb.Point{b.Max.Lon() + dLon, b.Max.Lat() + dLat},
	}
}
