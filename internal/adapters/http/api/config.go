package api

import (
	"net/http"

	"github.com/okian/hiddengems/internal/domain/popup"
)

// Map presentation defaults.
const (
	defaultCenterLat     = 46.1667
	defaultCenterLng     = 21.3167
	defaultZoom          = 13
	defaultMaxZoom       = 19
	defaultClusterRadius = 46
	defaultTileURL       = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultAttribution   = "&copy; OpenStreetMap contributors"
)

// MapSettings is the map presentation the browser glue applies.
type MapSettings struct {
	CenterLat       float64 `json:"centerLat"`
	CenterLng       float64 `json:"centerLng"`
	Zoom            int     `json:"zoom"`
	MaxZoom         int     `json:"maxZoom"`
	TileURL         string  `json:"tileUrl"`
	Attribution     string  `json:"attribution"`
	ClusterRadius   int     `json:"clusterRadius"`
	CoverageOnHover bool    `json:"coverageOnHover"`
	PopupMaxWidth   int     `json:"popupMaxWidth"`
}

// DefaultMapSettings centers the map on Arad.
func DefaultMapSettings() MapSettings {
	return MapSettings{
		CenterLat:     defaultCenterLat,
		CenterLng:     defaultCenterLng,
		Zoom:          defaultZoom,
		MaxZoom:       defaultMaxZoom,
		TileURL:       defaultTileURL,
		Attribution:   defaultAttribution,
		ClusterRadius: defaultClusterRadius,
		PopupMaxWidth: popup.MaxWidth,
	}
}

// HandleConfig handles GET /api/config requests.
func (s *Server) HandleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.mapCfg)
}
