// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	service "github.com/okian/hiddengems/internal/app"
	"github.com/okian/hiddengems/internal/domain/collate"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/internal/domain/view"
	"github.com/okian/hiddengems/pkg/logger"
)

// maxFilterLen bounds each filter parameter, in runes.
const maxFilterLen = 200

// corsMaxAge is how long browsers may cache preflight results, in seconds.
const corsMaxAge = 300

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Refresh replays the markers matching page's filters onto page.
	Refresh(page view.Page) []view.Marker
	// Visible returns the markers matching state.
	Visible(state filter.State) []view.Marker
	// Options returns the option lists of the filter controls.
	Options() collate.OptionSet
	// Status reports the outcome of the dataset load.
	Status() service.Status
	// ShowLoadError shows the load error dialog on page, if any.
	ShowLoadError(page view.Page) bool
	// ShowAbout shows the about dialog on page.
	ShowAbout(page view.Page)
	// Submit returns the form to open or shows instructions on page.
	Submit(page view.Page) string
}

// Server wires HTTP routes for the map API.
type Server struct {
	deps    Dependencies
	origins []string
	mapCfg  MapSettings
	logger  logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithMapSettings sets what GET /api/config reports to the browser.
func WithMapSettings(m MapSettings) Option {
	return func(s *Server) {
		s.mapCfg = m
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		origins:       []string{"*"},
		mapCfg:        DefaultMapSettings(),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("http")
	}
	return s
}

// Router returns a chi router with the common middleware installed.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAge,
	}))
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", MetricsMiddleware(s.HandleConfig, "config"))
		r.Get("/options", MetricsMiddleware(s.HandleOptions, "options"))
		r.Get("/markers", MetricsMiddleware(s.HandleMarkers, "markers"))
		r.Get("/markers.geojson", MetricsMiddleware(s.HandleMarkersGeoJSON, "markers_geojson"))
		r.Get("/status", MetricsMiddleware(s.HandleStatus, "status"))
		r.Get("/modal/about", MetricsMiddleware(s.HandleAbout, "modal_about"))
		r.Get("/modal/submit", MetricsMiddleware(s.HandleSubmit, "modal_submit"))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// filterState reads and validates the filter parameters of r.
func filterState(op string, r *http.Request) (filter.State, error) {
	st := filter.FromValues(r.URL.Query())
	for name, v := range map[string]string{
		filter.ParamQuery:    st.Query,
		filter.ParamYear:     st.Year,
		filter.ParamPrize:    st.Prize,
		filter.ParamCategory: st.Category,
	} {
		if utf8.RuneCountInString(v) > maxFilterLen {
			return filter.State{}, NewKind(op+"."+name, ErrBadRequest)
		}
		if !utf8.ValidString(v) || strings.ContainsRune(v, 0) {
			return filter.State{}, NewKind(op+"."+name, ErrBadRequest)
		}
	}
	return st, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before the status line goes out, so a value that
// cannot be encoded yields a 500 envelope instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: WrapKind("api.write_json", ErrEncode, err).Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
