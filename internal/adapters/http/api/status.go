// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/hiddengems/internal/adapters/mapview"
	service "github.com/okian/hiddengems/internal/app"
	"github.com/okian/hiddengems/internal/domain/filter"
)

type statusResponse struct {
	service.Status
	Modal *mapview.Modal `json:"modal,omitempty"`
}

// HandleStatus handles GET /api/status requests. When the load failed the
// response carries the error dialog the page should open.
func (s *Server) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{Status: s.deps.Status()}
	page := mapview.NewPage(filter.State{})
	if s.deps.ShowLoadError(page) {
		if m, ok := page.Modal(); ok {
			resp.Modal = &m
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type submitResponse struct {
	URL   string         `json:"url,omitempty"`
	Modal *mapview.Modal `json:"modal,omitempty"`
}

// HandleAbout handles GET /api/modal/about requests.
func (s *Server) HandleAbout(w http.ResponseWriter, _ *http.Request) {
	page := mapview.NewPage(filter.State{})
	s.deps.ShowAbout(page)
	m, _ := page.Modal()
	writeJSON(w, http.StatusOK, m)
}

// HandleSubmit handles GET /api/modal/submit requests. The response names
// either the form to open in a new tab or the dialog to show instead.
func (s *Server) HandleSubmit(w http.ResponseWriter, _ *http.Request) {
	page := mapview.NewPage(filter.State{})
	resp := submitResponse{URL: s.deps.Submit(page)}
	if m, ok := page.Modal(); ok {
		resp.Modal = &m
	}
	writeJSON(w, http.StatusOK, resp)
}
