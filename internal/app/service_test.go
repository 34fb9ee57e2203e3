package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/hiddengems/internal/adapters/mapview"
	"github.com/okian/hiddengems/internal/adapters/source"
	service "github.com/okian/hiddengems/internal/app"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/okian/hiddengems/internal/domain/point"
	"github.com/okian/hiddengems/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const threePoints = `{
  "type": "FeatureCollection",
  "features": [
    {"type":"Feature","geometry":{"type":"Point","coordinates":[21.30,46.10]},
     "properties":{"name":"Teatrul Clasic","category":"Clădire","year":2023,"winner":"Locul I"}},
    {"type":"Feature","geometry":{"type":"Point","coordinates":[21.40]},
     "properties":{"name":"Fără coordonate","category":"Sculptură","year":2022,"prize":"Mențiune"}},
    {"type":"Feature","geometry":{"type":"Point","coordinates":[21.50,46.30]},
     "properties":{"name":"Statuia Libertății","category":"Sculptură","year":2024,"prize":"Locul II"}}
  ]
}`

func modal(p *mapview.Page) mapview.Modal {
	m, _ := p.Modal()
	return m
}

func memSource(body string) source.Source {
	return source.NewFS(fstest.MapFS{"monuments.geojson": {Data: []byte(body)}}, "monuments.geojson")
}

func TestService_Load(t *testing.T) {
	Convey("Given a dataset with three points, one invalid", t, func() {
		svc := service.New(service.WithSource(memSource(threePoints)))
		page := mapview.NewPage(filter.State{})

		err := svc.Load(context.Background(), page)

		Convey("Then the load succeeds with two markers", func() {
			So(err, ShouldBeNil)
			So(len(svc.Markers()), ShouldEqual, 2)
			So(len(page.Visible()), ShouldEqual, 2)
			_, open := page.Modal()
			So(open, ShouldBeFalse)
		})

		Convey("Then the option lists include the invalid point", func() {
			opts := svc.Options()
			So(opts.Years, ShouldResemble, []string{"2022", "2023", "2024"})
			So(opts.Categories, ShouldResemble, []string{"Clădire", "Sculptură"})
			So(opts.Prizes, ShouldResemble, []string{"Locul I", "Locul II", "Mențiune"})
		})

		Convey("Then the initial view fits both markers", func() {
			b, ok := page.Viewport()
			So(ok, ShouldBeTrue)
			So(b.Min.Lon(), ShouldAlmostEqual, 21.30-0.2*0.15, 1e-9)
			So(b.Max.Lat(), ShouldAlmostEqual, 46.30+0.2*0.15, 1e-9)
		})

		Convey("Then the status reports the counts", func() {
			st := svc.Status()
			So(st.Loaded, ShouldBeTrue)
			So(st.Points, ShouldEqual, 3)
			So(st.Markers, ShouldEqual, 2)
			So(st.Dropped, ShouldEqual, 1)
			So(st.Error, ShouldBeEmpty)
			So(svc.LoadError(), ShouldBeNil)
		})

		Convey("When the category filter selects one marker", func() {
			page.SetFilterState(filter.State{Category: "Sculptură"})
			visible := svc.Refresh(page)

			Convey("Then one marker is shown and the viewport is its point", func() {
				So(len(visible), ShouldEqual, 1)
				So(visible[0].Props.Name(), ShouldEqual, "Statuia Libertății")
				b, _ := page.Viewport()
				So(b.Min.Lon(), ShouldEqual, 21.50)
				So(b.Max.Lon(), ShouldEqual, 21.50)
				So(b.Min.Lat(), ShouldEqual, 46.30)
			})
		})

		Convey("When the query matches nothing", func() {
			page.SetFilterState(filter.State{Query: "nimic"})
			before, _ := page.Viewport()
			visible := svc.Refresh(page)

			Convey("Then the map is empty and the viewport unchanged", func() {
				So(visible, ShouldBeEmpty)
				So(page.Visible(), ShouldBeEmpty)
				after, _ := page.Viewport()
				So(after, ShouldResemble, before)
			})
		})

		Convey("When the controls are reset", func() {
			page.SetFilterState(filter.State{Year: "2024"})
			svc.Refresh(page)
			page.Reset()
			visible := svc.Refresh(page)

			Convey("Then every marker is back", func() {
				So(len(visible), ShouldEqual, 2)
			})
		})

		Convey("When querying without a page", func() {
			visible := svc.Visible(filter.State{Prize: "Locul I"})

			Convey("Then the prize falls back to winner", func() {
				So(len(visible), ShouldEqual, 1)
				So(visible[0].Props.Name(), ShouldEqual, "Teatrul Clasic")
			})
		})

		Convey("Then the stats are human readable", func() {
			stats := svc.GetStats()
			So(stats["markers"], ShouldEqual, 2)
			So(stats["summary"], ShouldEqual, "2 markere din 3 puncte")
			So(stats["datasetSize"], ShouldEndWith, "B")
			So(stats["loadedAgo"], ShouldNotBeEmpty)
		})
	})
}

func TestService_LoadFailure(t *testing.T) {
	Convey("Given a server that does not have the dataset", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		url := srv.URL + "/data/monuments.geojson"
		svc := service.New(service.WithSource(source.NewHTTP(url)))
		page := mapview.NewPage(filter.State{})

		err := svc.Load(context.Background(), page)

		Convey("Then the load fails with a LoadError", func() {
			So(errors.Is(err, point.ErrLoad), ShouldBeTrue)
			So(svc.LoadError(), ShouldEqual, err)
		})

		Convey("Then no markers are published", func() {
			So(svc.Markers(), ShouldBeEmpty)
			So(page.Visible(), ShouldBeEmpty)
			_, ok := page.Viewport()
			So(ok, ShouldBeFalse)
			So(svc.Options().Years, ShouldNotBeNil)
			So(svc.Options().Years, ShouldBeEmpty)
		})

		Convey("Then the error dialog shows the literal detail", func() {
			m, open := page.Modal()
			So(open, ShouldBeTrue)
			So(m.Title, ShouldEqual, service.ErrorTitle)
			So(m.HTML, ShouldContainSubstring, "(404)")
			So(m.HTML, ShouldContainSubstring, "Nu pot încărca "+url+" (404)")
			So(m.HTML, ShouldStartWith, "<p>Nu am putut încărca datele: <code>")
		})

		Convey("Then refreshes leave the map empty", func() {
			other := mapview.NewPage(filter.State{})
			So(svc.Refresh(other), ShouldBeEmpty)
			So(svc.ShowLoadError(other), ShouldBeTrue)
			So(modal(other).Title, ShouldEqual, service.ErrorTitle)
		})

		Convey("Then the status carries the error", func() {
			st := svc.Status()
			So(st.Loaded, ShouldBeFalse)
			So(st.Error, ShouldEndWith, "(404)")
			So(svc.GetStats()["error"], ShouldEqual, st.Error)
		})
	})

	Convey("Given a body that is not GeoJSON", t, func() {
		svc := service.New(service.WithSource(memSource(`<html>oops</html>`)))
		page := mapview.NewPage(filter.State{})

		err := svc.Load(context.Background(), page)

		Convey("Then the parse error is reported as a load error", func() {
			So(errors.Is(err, point.ErrLoad), ShouldBeTrue)
			So(errors.Is(err, point.ErrParse), ShouldBeTrue)
			So(modal(page).HTML, ShouldContainSubstring, "monuments.geojson")
		})
	})

	Convey("Given an error carrying markup", t, func() {
		body := service.ErrorModal(errors.New(`<script>x</script>`))

		Convey("Then the detail is escaped", func() {
			So(body, ShouldContainSubstring, "&lt;script&gt;x&lt;/script&gt;")
			So(body, ShouldNotContainSubstring, "<script>")
		})
	})

	Convey("Given a service without a source", t, func() {
		svc := service.New()
		err := svc.Load(context.Background(), mapview.NewPage(filter.State{}))

		Convey("Then loading is refused", func() {
			So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
		})
	})
}

func TestService_Dialogs(t *testing.T) {
	Convey("Given a loaded service", t, func() {
		svc := service.New(service.WithSource(memSource(threePoints)))

		Convey("When the about dialog is opened", func() {
			page := mapview.NewPage(filter.State{})
			svc.ShowAbout(page)
			m := modal(page)
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(m.HTML))
			So(err, ShouldBeNil)

			Convey("Then the markdown is rendered", func() {
				So(m.Title, ShouldEqual, service.AboutTitle)
				So(doc.Find("p b, p strong").First().Text(), ShouldEqual, "Harta Virtuală")
				So(doc.Find("li").Length(), ShouldEqual, 3)
				So(doc.Find("code").Text(), ShouldEqual, "monuments.geojson")
			})
		})

		Convey("When a custom about text is configured", func() {
			custom := service.New(service.WithAbout("# Salut\n\n<script>x</script>"))
			out := custom.About()

			Convey("Then raw HTML is dropped", func() {
				So(out, ShouldContainSubstring, "Salut")
				So(out, ShouldNotContainSubstring, "<script>")
			})
		})

		Convey("When a submission form is configured", func() {
			page := mapview.NewPage(filter.State{})
			u := svc.Submit(page)

			Convey("Then the client is told to open it", func() {
				So(u, ShouldEqual, service.DefaultSubmitURL)
				_, open := page.Modal()
				So(open, ShouldBeFalse)
			})
		})

		for _, unset := range []string{"", "https://example.com"} {
			Convey("When the submission form is "+strings.TrimSpace(unset+" (unset)"), func() {
				s := service.New(service.WithSubmitURL(unset))
				page := mapview.NewPage(filter.State{})
				u := s.Submit(page)

				Convey("Then instructions are shown instead", func() {
					So(u, ShouldBeEmpty)
					So(modal(page).Title, ShouldEqual, service.SubmitTitle)
					So(modal(page).HTML, ShouldContainSubstring, "submit_url")
				})
			})
		}
	})
}

func TestService_Options(t *testing.T) {
	Convey("Given configuration options", t, func() {
		svc := service.New(
			service.WithSource(memSource(threePoints)),
			service.WithBoundsPadding(0),
			service.WithLogger(logger.Named("test")),
		)
		page := mapview.NewPage(filter.State{})
		So(svc.Load(context.Background(), page), ShouldBeNil)

		Convey("Then zero padding fits the raw bounds", func() {
			b, _ := page.Viewport()
			So(b.Min.Lon(), ShouldEqual, 21.30)
			So(b.Max.Lat(), ShouldEqual, 46.30)
			So(svc.Padding(), ShouldEqual, 0)
		})

		Convey("Then returned option lists are copies", func() {
			opts := svc.Options()
			opts.Years[0] = "changed"
			So(svc.Options().Years[0], ShouldEqual, "2022")
		})
	})
}
