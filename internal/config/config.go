// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and the environment.
// - External errors are wrapped with this package's sentinels.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataURL locates the monuments GeoJSON: an http(s) URL or a file path.
	// Empty means the sample dataset embedded in the site.
	DataURL string `koanf:"data_url"`

	// FetchTimeoutMS bounds the dataset fetch. Zero disables the timeout.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// SubmitURL is the external submission form.
	SubmitURL string `koanf:"submit_url"`

	// Locale selects the collation used for filter option lists.
	Locale string `koanf:"locale"`

	// BoundsPadding grows the fitted viewport by this ratio of its extent.
	BoundsPadding float64 `koanf:"bounds_padding"`

	// CORSOrigins lists origins allowed to call the JSON API.
	CORSOrigins []string `koanf:"cors_origins"`

	// Map presentation handed to the browser glue.
	MapCenterLat  float64 `koanf:"map_center_lat"`
	MapCenterLng  float64 `koanf:"map_center_lng"`
	MapZoom       int     `koanf:"map_zoom"`
	ClusterRadius int     `koanf:"cluster_radius"`

	// MetricsNamespace prefixes every exported Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsRefreshMS is how often system gauges are sampled.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		DataURL:       "",
		SubmitURL:     "https://forms.gle/FskENUpS3Z62T45D9",
		Locale:        "ro",
		BoundsPadding: 0.15,
		CORSOrigins:   []string{"*"},
		MapCenterLat:  46.1667,
		MapCenterLng:  21.3167,
		MapZoom:       13,
		ClusterRadius: 46,

		MetricsNamespace: "hiddengems",
		MetricsRefreshMS: 10000,
	}
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
