// Package service loads the monuments dataset and drives the map page:
// it publishes markers and option lists, replays the filtered view and
// shows the about, submit and error dialogs.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/okian/hiddengems/internal/adapters/source"
	"github.com/okian/hiddengems/internal/domain/collate"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/internal/domain/point"
	"github.com/okian/hiddengems/internal/domain/view"
	"github.com/okian/hiddengems/pkg/logger"
	"github.com/okian/hiddengems/pkg/metrics"
	"golang.org/x/text/language"
)

const millisecondsPerSecond = 1000

// Status describes the outcome of the last load.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Source   string    `json:"source"`
	Points   int       `json:"points"`
	Markers  int       `json:"markers"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loadedAt,omitzero"`
	Error    string    `json:"error,omitempty"`
}

// Service owns the loaded dataset and everything derived from it.
type Service struct {
	mu sync.RWMutex

	// Configuration
	source    source.Source
	sorter    *collate.Sorter
	padding   float64
	submitURL string
	aboutMD   string

	// State
	dataset  point.Dataset
	markers  []view.Marker
	sync     *view.Synchronizer
	options  collate.OptionSet
	dropped  int
	bytes    int
	loaded   bool
	loadErr  error
	loadedAt time.Time
	loadTook time.Duration

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where the dataset is fetched from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithBoundsPadding sets the viewport padding ratio. Negative values are ignored.
func WithBoundsPadding(ratio float64) Option {
	return func(s *Service) {
		if ratio >= 0 {
			s.padding = ratio
		}
	}
}

// WithLocale sets the collation locale of the option lists.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.sorter = collate.NewSorter(tag)
	}
}

// WithSubmitURL sets the external submission form.
func WithSubmitURL(url string) Option {
	return func(s *Service) {
		s.submitURL = url
	}
}

// WithAbout replaces the markdown shown in the about dialog.
func WithAbout(md string) Option {
	return func(s *Service) {
		if md != "" {
			s.aboutMD = md
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sorter:    collate.NewSorter(collate.DefaultLocale),
		padding:   view.DefaultPadding,
		submitURL: DefaultSubmitURL,
		aboutMD:   aboutMarkdown,
		sync:      view.NewSynchronizer(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Load fetches and parses the dataset, builds the markers and option lists
// and runs the first view pass on page with no filters set. On failure no
// markers are published and the error dialog is shown on page. Loads are
// never retried.
func (s *Service) Load(ctx context.Context, page view.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return ErrNoSource
	}

	start := time.Now()
	ds, size, err := s.fetch(ctx)
	took := time.Since(start)
	if err != nil {
		s.fail(ctx, page, err, took)
		return err
	}

	markers, dropped := view.Build(ds)
	s.dataset = ds
	s.markers = markers
	s.dropped = dropped
	s.bytes = size
	s.options = s.sorter.Options(ds)
	s.sync = view.NewSynchronizer(markers, view.WithPadding(s.padding))
	s.loaded = true
	s.loadErr = nil
	s.loadedAt = time.Now()
	s.loadTook = took

	for _, p := range ds.Points {
		if !p.Valid() {
			s.logger.Debug(ctx, "dropping point without usable coordinates",
				logger.String("name", p.Properties.Name()),
				logger.Int("components", len(p.Coordinates)),
			)
		}
	}

	metrics.RecordDatasetLoaded(ds.Len(), len(markers), dropped, float64(took.Microseconds())/millisecondsPerSecond)
	metrics.UpdateFilterOptions(filter.ParamYear, len(s.options.Years))
	metrics.UpdateFilterOptions(filter.ParamPrize, len(s.options.Prizes))
	metrics.UpdateFilterOptions(filter.ParamCategory, len(s.options.Categories))

	s.logger.Info(ctx, "dataset loaded",
		logger.String("source", s.source.String()),
		logger.Int("points", ds.Len()),
		logger.Int("markers", len(markers)),
		logger.Int("dropped", dropped),
		logger.Duration("took", took),
	)

	s.sync.Refresh(page, filter.State{})
	return nil
}

func (s *Service) fetch(ctx context.Context) (point.Dataset, int, error) {
	data, err := s.source.Fetch(ctx)
	if err != nil {
		return point.Dataset{}, 0, s.asLoadError(err)
	}
	ds, err := point.Parse(data)
	if err != nil {
		return point.Dataset{}, len(data), s.asLoadError(err)
	}
	return ds, len(data), nil
}

func (s *Service) asLoadError(err error) error {
	var le *point.LoadError
	if errors.As(err, &le) {
		return err
	}
	return &point.LoadError{Source: s.source.String(), Err: err}
}

func (s *Service) fail(ctx context.Context, page view.Page, err error, took time.Duration) {
	s.dataset = point.Dataset{}
	s.markers = nil
	s.dropped = 0
	s.bytes = 0
	s.options = collate.OptionSet{Years: []string{}, Prizes: []string{}, Categories: []string{}}
	s.sync = view.NewSynchronizer(nil)
	s.loaded = false
	s.loadErr = err
	s.loadedAt = time.Time{}
	s.loadTook = took

	metrics.RecordDatasetLoadError(float64(took.Microseconds()) / millisecondsPerSecond)
	s.logger.Error(ctx, "dataset load failed",
		logger.String("source", s.source.String()),
		logger.Error(err),
	)
	page.ShowModal(ErrorTitle, ErrorModal(err))
}

// Refresh replays the markers matching page's filter controls onto page.
func (s *Service) Refresh(page view.Page) []view.Marker {
	s.mu.RLock()
	current := s.sync
	s.mu.RUnlock()

	start := time.Now()
	visible := current.Refresh(page, page.FilterState())
	metrics.RecordRefresh(len(visible), float64(time.Since(start).Microseconds())/millisecondsPerSecond)
	return visible
}

// Visible returns the markers matching state without touching any layer.
func (s *Service) Visible(state filter.State) []view.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view.Visible(s.markers, state)
}

// Markers returns every published marker.
func (s *Service) Markers() []view.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]view.Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Padding returns the viewport padding ratio.
func (s *Service) Padding() float64 {
	return s.padding
}

// Options returns the option lists of the filter controls.
func (s *Service) Options() collate.OptionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collate.OptionSet{
		Years:      append([]string{}, s.options.Years...),
		Prizes:     append([]string{}, s.options.Prizes...),
		Categories: append([]string{}, s.options.Categories...),
	}
}

// LoadError returns the error of the last load, if it failed.
func (s *Service) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// ShowLoadError shows the error dialog on page when the last load failed.
func (s *Service) ShowLoadError(page view.Page) bool {
	err := s.LoadError()
	if err == nil {
		return false
	}
	page.ShowModal(ErrorTitle, ErrorModal(err))
	return true
}

// Status reports the outcome of the last load.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Loaded:   s.loaded,
		Points:   s.dataset.Len(),
		Markers:  len(s.markers),
		Dropped:  s.dropped,
		LoadedAt: s.loadedAt,
	}
	if s.source != nil {
		st.Source = s.source.String()
	}
	if s.loadErr != nil {
		st.Error = s.loadErr.Error()
	}
	return st
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	st := s.Status()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"loaded":     st.Loaded,
		"source":     st.Source,
		"points":     st.Points,
		"markers":    st.Markers,
		"dropped":    st.Dropped,
		"years":      len(s.options.Years),
		"prizes":     len(s.options.Prizes),
		"categories": len(s.options.Categories),
		"loadTook":   s.loadTook.String(),
	}
	if st.Loaded {
		stats["datasetSize"] = humanize.Bytes(uint64(s.bytes))
		stats["loadedAt"] = st.LoadedAt.Format(time.RFC3339)
		stats["loadedAgo"] = humanize.Time(st.LoadedAt)
		stats["summary"] = humanize.Comma(int64(st.Markers)) + " markere din " + humanize.Comma(int64(st.Points)) + " puncte"
	}
	if st.Error != "" {
		stats["error"] = st.Error
	}
	return stats
}
