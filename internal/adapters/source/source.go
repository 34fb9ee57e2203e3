// Package source fetches the raw monuments dataset.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/okian/hiddengems/internal/domain/point"
)

// maxBodyBytes bounds the dataset read; the file is expected to be small.
const maxBodyBytes = 16 << 20

// Source returns the dataset bytes. Implementations never serve cached copies.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// String names the resource for error messages and logs.
	String() string
}

// HTTP fetches the dataset over HTTP(S).
type HTTP struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets a request timeout on the default client. Zero means none.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		if d > 0 {
			h.client = &http.Client{Timeout: d}
		}
	}
}

// NewHTTP returns a source for url.
func NewHTTP(url string, opts ...HTTPOption) *HTTP {
	h := &HTTP{url: url, client: &http.Client{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) String() string { return h.url }

// Fetch performs a GET that bypasses caches. Non-2xx statuses yield a
// *point.LoadError carrying the status.
func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, http.NoBody)
	if err != nil {
		return nil, &point.LoadError{Source: h.url, Err: err}
	}
	req.Header.Set("Cache-Control", "no-store, no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &point.LoadError{Source: h.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &point.LoadError{Source: h.url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &point.LoadError{Source: h.url, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// FS reads the dataset from a file system, e.g. the embedded site or a directory.
type FS struct {
	fsys  fs.FS
	name  string
	label string
}

// NewFS returns a source reading name from fsys.
func NewFS(fsys fs.FS, name string) *FS {
	return &FS{fsys: fsys, name: name, label: name}
}

func (f *FS) String() string { return f.label }

// Fetch reads the whole file. A missing file reports status 404.
func (f *FS) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &point.LoadError{Source: f.label, Err: err}
	}
	data, err := fs.ReadFile(f.fsys, f.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &point.LoadError{Source: f.label, Status: http.StatusNotFound}
		}
		return nil, &point.LoadError{Source: f.label, Err: err}
	}
	return data, nil
}

// New picks a source for location: http(s) URLs are fetched over the network,
// anything else is read as a local file path.
func New(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTP(location, WithTimeout(timeout))
	}
	dir, name := splitPath(location)
	f := NewFS(os.DirFS(dir), name)
	f.label = location
	return f
}

func splitPath(p string) (string, string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ".", p
	}
	if i == 0 {
		return "/", p[1:]
	}
	return p[:i], p[i+1:]
}
