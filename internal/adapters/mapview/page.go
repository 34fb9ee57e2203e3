// Package mapview is an in-memory map page: a clustered marker group, a
// viewport and a modal slot. It records what the core asks the page to show
// and serializes it for the browser glue.
package mapview

import (
	"sync"

	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/internal/domain/popup"
	"github.com/okian/hiddengems/internal/domain/view"
	"github.com/paulmach/orb"
)

// Modal is the content of the page's dialog.
type Modal struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// MarkerView is the JSON shape of a visible marker.
type MarkerView struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Name     string  `json:"name"`
	Popup    string  `json:"popup"`
	MaxWidth int     `json:"maxWidth"`
}

// BoundsView is a south-west / north-east box in Leaflet order.
type BoundsView struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Snapshot is what the page currently shows.
type Snapshot struct {
	Filter  filter.State `json:"filter"`
	Markers []MarkerView `json:"markers"`
	Bounds  *BoundsView  `json:"bounds,omitempty"`
	Modal   *Modal       `json:"modal,omitempty"`
}

// Page implements view.Page in memory.
type Page struct {
	mu      sync.Mutex
	state   filter.State
	visible []view.Marker
	bounds  *orb.Bound
	modal   *Modal
}

var _ view.Page = (*Page)(nil)

// NewPage returns a page whose controls hold state.
func NewPage(state filter.State) *Page {
	return &Page{state: state}
}

// FilterState returns the current control values.
func (p *Page) FilterState() filter.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetFilterState changes the control values, as user input would.
func (p *Page) SetFilterState(s filter.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

// Reset clears every control.
func (p *Page) Reset() {
	p.SetFilterState(filter.State{})
}

// ClearLayers empties the marker group.
func (p *Page) ClearLayers() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = nil
}

// AddLayer adds m to the marker group.
func (p *Page) AddLayer(m view.Marker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = append(p.visible, m)
}

// FitBounds records the viewport.
func (p *Page) FitBounds(b orb.Bound) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bounds = &b
}

// ShowModal opens the dialog with title and an HTML fragment.
func (p *Page) ShowModal(title, fragment string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modal = &Modal{Title: title, HTML: fragment}
}

// CloseModal hides the dialog.
func (p *Page) CloseModal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modal = nil
}

// Visible returns the markers in the group.
func (p *Page) Visible() []view.Marker {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]view.Marker, len(p.visible))
	copy(out, p.visible)
	return out
}

// Viewport returns the last fitted bounds, if any.
func (p *Page) Viewport() (orb.Bound, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bounds == nil {
		return orb.Bound{}, false
	}
	return *p.bounds, true
}

// Modal returns the open dialog, if any.
func (p *Page) Modal() (Modal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modal == nil {
		return Modal{}, false
	}
	return *p.modal, true
}

// Snapshot serializes the page.
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		Filter:  p.state,
		Markers: make([]MarkerView, 0, len(p.visible)),
	}
	for _, m := range p.visible {
		snap.Markers = append(snap.Markers, MarkerView{
			ID:       m.ID,
			Lat:      m.Lat(),
			Lng:      m.Lng(),
			Name:     m.Props.Name(),
			Popup:    m.Popup,
			MaxWidth: popup.MaxWidth,
		})
	}
	if p.bounds != nil {
		snap.Bounds = &BoundsView{
			South: p.bounds.Min.Lat(),
			West:  p.bounds.Min.Lon(),
			North: p.bounds.Max.Lat(),
			East:  p.bounds.Max.Lon(),
		}
	}
	if p.modal != nil {
		m := *p.modal
		snap.Modal = &m
	}
	return snap
}
