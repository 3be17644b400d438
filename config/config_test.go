package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/filesystem"
	"github.com/tvplay-cli/tvplay/key"
	"github.com/tvplay-cli/tvplay/media"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should derive environment variable names", func() {
			f := Default[key.DrmLicenseServerURL]
			So(f.Env(), ShouldEqual, "TVPLAY_DRM_LICENSE_SERVER_URL")
		})

		Convey("Should read overrides from the environment", func() {
			t.Setenv("TVPLAY_DRM_CONCURRENCY", "reject")
			_ = Setup()
			So(viper.GetString(key.DrmConcurrency), ShouldEqual, "reject")
		})
	})
}

func TestPlayback(t *testing.T) {
	Convey("Given the default settings", t, func() {
		viper.Reset()
		So(Setup(), ShouldBeNil)

		Convey("The engine config matches the engine defaults", func() {
			cfg := Playback("https://cdn.example/a.mpd")

			So(cfg.Src, ShouldEqual, "https://cdn.example/a.mpd")
			So(cfg.DRM, ShouldBeNil)
			So(cfg.MinimumDVRSize, ShouldEqual, 60)
			So(cfg.LiveStateThreshold, ShouldEqual, 3)
			So(cfg.ReadyThreshold, ShouldEqual, media.HaveFutureData)
			So(cfg.ReadyBackoff, ShouldEqual, 100*time.Millisecond)
			So(cfg.ReadyBackoffCeiling, ShouldEqual, 0)
		})

		Convey("A license server URL enables DRM", func() {
			viper.Set(key.DrmLicenseServerURL, "https://license.example/rightsmanager.asmx")
			cfg := Playback("")

			So(cfg.DRM, ShouldNotBeNil)
			mode, err := cfg.DRM.Mode()
			So(err, ShouldBeNil)
			So(mode, ShouldEqual, drm.LicenseOverride)
		})

		Convey("Negotiator policies are parsed", func() {
			viper.Set(key.DrmDispatchFailure, "fail")
			viper.Set(key.DrmTimeoutMs, 2500)

			opts, err := DRMOptions()
			So(err, ShouldBeNil)
			So(opts.DispatchFailure, ShouldEqual, drm.DispatchFail)
			So(opts.Concurrency, ShouldEqual, drm.Queue)
			So(opts.Timeout, ShouldEqual, 2500*time.Millisecond)
		})

		Convey("Unknown policies are rejected", func() {
			viper.Set(key.DrmConcurrency, "parallel")
			_, err := DRMOptions()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("The schema describes the engine config", t, func() {
		raw, err := Schema()
		So(err, ShouldBeNil)
		So(string(raw), ShouldContainSubstring, `"minimum_dvr_size"`)
		So(string(raw), ShouldContainSubstring, `"full_challenge_xml"`)
	})
}

func TestParse(t *testing.T) {
	Convey("Given values for config set", t, func() {
		Convey("Values take the type of the default", func() {
			v, err := Parse(key.PlaybackReadyThreshold, []string{"4"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 4)

			v, err = Parse(key.PlaybackMinimumDvrSize, []string{"90.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 90.5)

			v, err = Parse(key.HistorySave, []string{"false"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)
		})

		Convey("Ready thresholds outside 1 to 4 are refused", func() {
			_, err := Parse(key.PlaybackReadyThreshold, []string{"0"})
			So(err, ShouldNotBeNil)
			_, err = Parse(key.PlaybackReadyThreshold, []string{"5"})
			So(err, ShouldNotBeNil)
		})

		Convey("DRM policies must be known", func() {
			_, err := Parse(key.DrmDispatchFailure, []string{"fail"})
			So(err, ShouldBeNil)
			_, err = Parse(key.DrmDispatchFailure, []string{"maybe"})
			So(err, ShouldNotBeNil)
			_, err = Parse(key.DrmConcurrency, []string{"reject"})
			So(err, ShouldBeNil)
			_, err = Parse(key.DrmConcurrency, []string{"parallel"})
			So(err, ShouldNotBeNil)
		})

		Convey("Negative delays are refused", func() {
			_, err := Parse(key.DrmTimeoutMs, []string{"-1"})
			So(err, ShouldNotBeNil)
		})

		Convey("Malformed numbers are refused", func() {
			_, err := Parse(key.PlaybackReadyBackoffMs, []string{"fast"})
			So(err, ShouldNotBeNil)
		})

		Convey("Unconstrained keys accept any value", func() {
			v, err := Parse(key.DrmLicenseServerURL, []string{"https://license.example"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "https://license.example")
		})
	})
}
