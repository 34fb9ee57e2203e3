package popup_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/hiddengems/internal/domain/point"
	"github.com/okian/hiddengems/internal/domain/popup"
	. "github.com/smartystreets/goconvey/convey"
)

func parse(fragment string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	So(err, ShouldBeNil)
	return doc
}

func TestRender(t *testing.T) {
	Convey("Given a fully described monument", t, func() {
		props := point.Properties{
			"name":      "Turnul de Apă",
			"category":  "Clădire",
			"year":      float64(2023),
			"winner":    "Locul I",
			"school":    "Colegiul Național Moise Nicoară",
			"notes":     "Construit în 1896",
			"youtubeId": " dQw4w9WgXcQ ",
		}

		doc := parse(popup.Render(props))

		Convey("Then the heading shows the name", func() {
			So(doc.Find(".popup h3").Text(), ShouldEqual, "Turnul de Apă")
		})

		Convey("Then the metadata line lists fields in fixed order", func() {
			spans := doc.Find(".meta span")
			So(spans.Length(), ShouldEqual, 4)
			So(spans.Eq(0).Text(), ShouldEqual, "Categorie: Clădire")
			So(spans.Eq(1).Text(), ShouldEqual, "An: 2023")
			So(spans.Eq(2).Text(), ShouldEqual, "Premiu: Locul I")
			So(spans.Eq(3).Text(), ShouldEqual, "Școala: Colegiul Național Moise Nicoară")
		})

		Convey("Then the notes block is present", func() {
			So(doc.Find(".desc").First().Text(), ShouldEqual, "Construit în 1896")
		})

		Convey("Then the video uses the privacy-enhanced embed", func() {
			iframe := doc.Find("iframe.video")
			So(iframe.Length(), ShouldEqual, 1)
			src, _ := iframe.Attr("src")
			So(src, ShouldEqual, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ")
			loading, _ := iframe.Attr("loading")
			So(loading, ShouldEqual, "lazy")
			allow, _ := iframe.Attr("allow")
			So(allow, ShouldContainSubstring, "autoplay")
			_, fullscreen := iframe.Attr("allowfullscreen")
			So(fullscreen, ShouldBeTrue)
		})

		Convey("Then the search link opens without opener access", func() {
			a := doc.Find(".linkrow a")
			href, _ := a.Attr("href")
			So(href, ShouldEqual, "https://www.google.com/maps?q=Turnul%20de%20Ap%C4%83%20Arad")
			target, _ := a.Attr("target")
			So(target, ShouldEqual, "_blank")
			rel, _ := a.Attr("rel")
			So(rel, ShouldEqual, "noopener")
		})
	})

	Convey("Given a monument with no optional fields", t, func() {
		doc := parse(popup.Render(point.Properties{}))

		Convey("Then the name falls back to Monument", func() {
			So(doc.Find("h3").Text(), ShouldEqual, popup.DefaultName)
		})

		Convey("Then no empty metadata placeholders are rendered", func() {
			So(doc.Find(".meta span").Length(), ShouldEqual, 0)
		})

		Convey("Then the video placeholder replaces the iframe", func() {
			So(doc.Find("iframe").Length(), ShouldEqual, 0)
			So(doc.Find(".desc i").Text(), ShouldEqual, popup.NoVideoMessage)
			So(doc.Find(".desc").Length(), ShouldEqual, 1)
		})

		Convey("Then the search link uses the fallback name", func() {
			href, _ := doc.Find(".linkrow a").Attr("href")
			So(href, ShouldEqual, "https://www.google.com/maps?q=Monument%20Arad")
		})
	})

	Convey("Given a monument with hostile text", t, func() {
		props := point.Properties{
			"name":      `<script>alert("x")</script>`,
			"category":  `<img src=x onerror=alert(1)>`,
			"notes":     `Tom & Jerry's <b>`,
			"youtubeId": `abc"><script>`,
		}
		out := popup.Render(props)
		doc := parse(out)

		Convey("Then no markup is injected", func() {
			So(doc.Find("script").Length(), ShouldEqual, 0)
			So(doc.Find("img").Length(), ShouldEqual, 0)
			So(doc.Find(".desc b").Length(), ShouldEqual, 0)
		})

		Convey("Then the text survives literally", func() {
			So(doc.Find("h3").Text(), ShouldEqual, `<script>alert("x")</script>`)
			So(doc.Find(".desc").First().Text(), ShouldEqual, `Tom & Jerry's <b>`)
		})

		Convey("Then the video id is escaped as a URL component", func() {
			src, _ := doc.Find("iframe").Attr("src")
			So(src, ShouldEqual, "https://www.youtube-nocookie.com/embed/abc%22%3E%3Cscript%3E")
		})
	})
}

func TestURLs(t *testing.T) {
	Convey("Given URL helpers", t, func() {
		So(popup.EmbedURL("a b"), ShouldEqual, "https://www.youtube-nocookie.com/embed/a%20b")
		So(popup.SearchURL("A&B"), ShouldEqual, "https://www.google.com/maps?q=A%26B%20Arad")
	})
}
