package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/okian/hiddengems/internal/adapters/source"
	"github.com/okian/hiddengems/internal/domain/point"
	. "github.com/smartystreets/goconvey/convey"
)

const body = `{"type":"FeatureCollection","features":[]}`

func TestHTTP(t *testing.T) {
	Convey("Given a dataset server", t, func() {
		var gotCache, gotPragma string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCache = r.Header.Get("Cache-Control")
			gotPragma = r.Header.Get("Pragma")
			switch r.URL.Path {
			case "/data/monuments.geojson":
				w.Header().Set("Content-Type", "application/geo+json")
				_, _ = w.Write([]byte(body))
			case "/boom":
				w.WriteHeader(http.StatusInternalServerError)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		Convey("When the file exists", func() {
			src := source.NewHTTP(srv.URL+"/data/monuments.geojson", source.WithClient(srv.Client()))
			data, err := src.Fetch(context.Background())

			Convey("Then the body is returned", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, body)
			})

			Convey("Then caches are bypassed", func() {
				So(gotCache, ShouldContainSubstring, "no-store")
				So(gotPragma, ShouldEqual, "no-cache")
			})
		})

		Convey("When the file is missing", func() {
			url := srv.URL + "/data/missing.geojson"
			_, err := source.NewHTTP(url).Fetch(context.Background())

			Convey("Then a LoadError carries the status", func() {
				var le *point.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Status, ShouldEqual, http.StatusNotFound)
				So(err.Error(), ShouldEqual, "Nu pot încărca "+url+" (404)")
				So(errors.Is(err, point.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When the server fails", func() {
			_, err := source.NewHTTP(srv.URL+"/boom", source.WithTimeout(time.Second)).Fetch(context.Background())

			Convey("Then the status is reported", func() {
				So(err.Error(), ShouldEndWith, "(500)")
			})
		})

		Convey("When the server is unreachable", func() {
			url := srv.URL + "/data/monuments.geojson"
			srv.Close()
			_, err := source.NewHTTP(url).Fetch(context.Background())

			Convey("Then a LoadError without status is returned", func() {
				var le *point.LoadError
				So(errors.As(err, &le), ShouldBeTrue)
				So(le.Status, ShouldEqual, 0)
				So(le.Err, ShouldNotBeNil)
			})
		})
	})
}

func TestFS(t *testing.T) {
	Convey("Given an in-memory file system", t, func() {
		fsys := fstest.MapFS{"data/monuments.geojson": {Data: []byte(body)}}

		Convey("When the file exists", func() {
			data, err := source.NewFS(fsys, "data/monuments.geojson").Fetch(context.Background())

			Convey("Then it is read whole", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, body)
			})
		})

		Convey("When the file is missing", func() {
			_, err := source.NewFS(fsys, "data/nope.geojson").Fetch(context.Background())

			Convey("Then it reads like a 404", func() {
				So(err.Error(), ShouldEqual, "Nu pot încărca data/nope.geojson (404)")
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := source.NewFS(fsys, "data/monuments.geojson").Fetch(ctx)

			Convey("Then the fetch fails", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given dataset locations", t, func() {
		Convey("Then URLs map to HTTP sources", func() {
			src := source.New("https://example.org/monuments.geojson", 0)
			_, ok := src.(*source.HTTP)
			So(ok, ShouldBeTrue)
			So(src.String(), ShouldEqual, "https://example.org/monuments.geojson")
		})

		Convey("Then paths map to file sources", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "monuments.geojson")
			So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)

			src := source.New(path, 0)
			data, err := src.Fetch(context.Background())
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, body)
			So(src.String(), ShouldEqual, path)
		})

		Convey("Then bare file names resolve against the working directory", func() {
			src := source.New("does-not-exist.geojson", 0)
			_, err := src.Fetch(context.Background())
			So(err.Error(), ShouldEqual, "Nu pot încărca does-not-exist.geojson (404)")
		})
	})
}
