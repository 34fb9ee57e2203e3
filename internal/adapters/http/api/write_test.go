package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/hiddengems/internal/adapters/mapview"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteJSON(t *testing.T) {
	Convey("Given a response recorder", t, func() {
		rec := httptest.NewRecorder()

		Convey("When the value encodes", func() {
			writeJSON(rec, http.StatusOK, map[string]int{"n": 1})

			Convey("Then the body and status are written", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldEqual, "{\"n\":1}\n")
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			})
		})

		Convey("When the snapshot carries a non-finite bound", func() {
			snap := mapview.Snapshot{Bounds: &mapview.BoundsView{South: math.NaN()}}
			writeJSON(rec, http.StatusOK, snap)

			Convey("Then an error envelope replaces the empty 200", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				var body errorResponse
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "internal_error")
				So(body.Message, ShouldContainSubstring, ErrEncode.Error())
			})
		})
	})
}
