// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/hiddengems/internal/adapters/mapview"
	"github.com/okian/hiddengems/internal/domain/view"
	"github.com/paulmach/orb/geojson"
)

// HandleOptions handles GET /api/options requests.
func (s *Server) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Options())
}

// HandleMarkers handles GET /api/markers?q=&year=&prize=&category= requests.
// It runs one view pass on a fresh page holding the requested filters and
// returns what the page shows: the visible markers with their popups and
// the padded viewport, absent when nothing matched.
func (s *Server) HandleMarkers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_markers"
	st, err := filterState(op, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	page := mapview.NewPage(st)
	s.deps.Refresh(page)
	writeJSON(w, http.StatusOK, page.Snapshot())
}

// HandleMarkersGeoJSON handles GET /api/markers.geojson requests with the
// same filters as /api/markers. The bbox member is the unpadded extent.
func (s *Server) HandleMarkersGeoJSON(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_markers_geojson"
	st, err := filterState(op, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	visible := s.deps.Visible(st)
	fc := geojson.NewFeatureCollection()
	for _, m := range visible {
		f := geojson.NewFeature(m.Position)
		f.ID = m.ID
		f.Properties = geojson.Properties(m.Props.Clone())
		fc.Append(f)
	}
	if b, ok := view.Bounds(visible); ok {
		fc.BBox = geojson.NewBBox(b)
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrEncode, err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
