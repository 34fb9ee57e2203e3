package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

const (
	envPrefix  = "HIDDENGEMS_"
	envFileVar = "HIDDENGEMS_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HIDDENGEMS_CONFIG is set
//  3. env (prefix HIDDENGEMS_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// HIDDENGEMS_DATA_URL -> data_url; underscores are kept to match the tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		if s == envFileVar {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Comma separated lists from the environment.
	if raw, ok := k.Get("cors_origins").(string); ok {
		_ = k.Set("cors_origins", splitList(raw))
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BoundsPadding < 0 || c.BoundsPadding > 1:
		return fmt.Errorf("%w: bounds_padding must be within [0,1], got %v", ErrInvalidConfig, c.BoundsPadding)
	case c.FetchTimeoutMS < 0:
		return fmt.Errorf("%w: fetch_timeout_ms must not be negative", ErrInvalidConfig)
	case c.MapZoom < 0:
		return fmt.Errorf("%w: map_zoom must not be negative", ErrInvalidConfig)
	case !metricName(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a metric name", ErrInvalidConfig, c.MetricsNamespace)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("%w: locale %q: %w", ErrInvalidConfig, c.Locale, err)
	}
	return nil
}

// LocaleTag returns the parsed collation locale.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Romanian
	}
	return tag
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// metricName reports whether s matches [a-zA-Z_][a-zA-Z0-9_]*.
func metricName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
