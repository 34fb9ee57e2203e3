package config_test

import (
	"testing"
	"time"

	"github.com/okian/hiddengems/internal/config"
	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DataURL, convey.ShouldBeEmpty)
			convey.So(cfg.Locale, convey.ShouldEqual, "ro")
			convey.So(cfg.BoundsPadding, convey.ShouldEqual, 0.15)
			convey.So(cfg.MapCenterLat, convey.ShouldEqual, 46.1667)
			convey.So(cfg.MapCenterLng, convey.ShouldEqual, 21.3167)
			convey.So(cfg.MapZoom, convey.ShouldEqual, 13)
			convey.So(cfg.ClusterRadius, convey.ShouldEqual, 46)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "hiddengems")
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the fetch has no timeout", func() {
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, time.Duration(0))
			cfg.FetchTimeoutMS = 1500
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 1500*time.Millisecond)
		})

		convey.Convey("Then the locale resolves to Romanian", func() {
			convey.So(cfg.LocaleTag(), convey.ShouldEqual, language.Romanian)
		})
	})
}
