package player_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/drm/drmtest"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/player"
)

const protectedURL = "https://cdn.example.com/protected/stream.ism/Manifest"

func protectedConfig() player.Config {
	return player.Config{
		Src: protectedURL,
		DRM: &drm.Config{LicenseServerURL: "https://la.example.com/rightsmanager.asmx"},
	}
}

func TestDRMNegotiation(t *testing.T) {
	Convey("Given a protected source", t, func() {
		var agents []*drmtest.Agent
		n := drm.NewNegotiator(drmtest.Factory(&agents, nil), drm.Options{Container: drm.NewAgentSet()})
		f := newFixture(protectedConfig(), player.WithNegotiator(n))

		Convey("The license is requested before the source is attached", func() {
			So(f.engine.State(), ShouldEqual, player.DrmPending)
			So(f.el.Sources, ShouldBeEmpty)
			So(agents, ShouldHaveLength, 1)
			So(agents[0].Last().Payload, ShouldContainSubstring, "<LA_URL>https://la.example.com/rightsmanager.asmx</LA_URL>")
		})

		Convey("A granted license attaches the source", func() {
			agents[0].MessageResult("1", "", 0)
			So(f.engine.DRMConfigured(), ShouldBeTrue)
			So(f.engine.State(), ShouldEqual, player.SourceAttached)
			So(f.el.Attached().URL, ShouldEqual, protectedURL)
			So(f.el.Attached().Type, ShouldEqual, "application/vnd.ms-sstr+xml")

			Convey("Setting the same URL negotiates nothing more", func() {
				So(f.engine.SetSource(protectedURL), ShouldBeNil)
				So(agents[0].Messages, ShouldHaveLength, 1)
				So(f.el.LoadCalls, ShouldEqual, 1)
			})

			Convey("Stopping clears the license without waiting", func() {
				So(f.engine.Stop(), ShouldBeNil)
				So(f.engine.DRMConfigured(), ShouldBeFalse)
				So(agents[0].Last().Payload, ShouldEqual, drm.ClearEnvelope())

				Convey("And playing again negotiates after the clear settles", func() {
					So(f.engine.Play(), ShouldBeNil)
					So(f.el.Sources, ShouldBeEmpty)
					So(agents[0].Messages, ShouldHaveLength, 2)

					agents[0].MessageResult("2", "", 0)
					So(agents, ShouldHaveLength, 2)
					So(agents[1].Last().Payload, ShouldContainSubstring, "LicenseServerUriOverride")

					agents[1].MessageResult("3", "", 0)
					So(f.el.Attached().URL, ShouldEqual, protectedURL)
				})
			})
		})

		Convey("A refused license is a fatal DRM error", func() {
			agents[0].MessageResult("1", "", 4)

			evt, ok := f.host.Last(event.Error)
			So(ok, ShouldBeTrue)
			perr := evt.Payload.(*player.Error)
			So(perr.Code, ShouldEqual, "drm:user_consent_needed")
			So(perr.Description, ShouldEqual, "DRM: User Consent Needed")
			So(perr.Fatal(), ShouldBeTrue)

			var drmErr *drm.Error
			So(errors.As(perr, &drmErr), ShouldBeTrue)
			So(f.engine.State(), ShouldEqual, player.Errored)
			So(f.el.Sources, ShouldBeEmpty)
		})

		Convey("A license granted after destroy is dropped and cleared", func() {
			So(f.engine.Destroy(), ShouldBeNil)
			agents[0].MessageResult("1", "", 0)

			So(f.el.Sources, ShouldBeEmpty)
			So(f.host.Events(), ShouldBeEmpty)
			So(agents[0].Last().Payload, ShouldEqual, drm.ClearEnvelope())
		})
	})

	Convey("Given DRM setup is disabled", t, func() {
		cfg := protectedConfig()
		cfg.DisableDRMSetup = true
		f := newFixture(cfg)

		So(f.engine.State(), ShouldEqual, player.SourceAttached)
		So(f.el.Attached().URL, ShouldEqual, protectedURL)
	})

	Convey("Given a platform without DRM dispatch", t, func() {
		Convey("The default policy attaches the source", func() {
			f := newFixture(protectedConfig())
			So(f.el.Attached().URL, ShouldEqual, protectedURL)
			So(f.engine.DRMConfigured(), ShouldBeTrue)
		})

		Convey("The fail policy reports a dispatch failure", func() {
			n := drm.NewNegotiator(drm.NewNullAgent, drm.Options{Container: drm.NewAgentSet(), DispatchFailure: drm.DispatchFail})
			f := newFixture(protectedConfig(), player.WithNegotiator(n))

			evt, _ := f.host.Last(event.Error)
			So(evt.Payload.(*player.Error).Code, ShouldEqual, "drm:dispatch_failure")
			So(f.el.Sources, ShouldBeEmpty)
		})
	})

	Convey("Given a negotiator that rejects concurrent requests", t, func() {
		n := drm.NewNegotiator(func() drm.Agent { return drmtest.NewAgent() }, drm.Options{Container: drm.NewAgentSet(), Concurrency: drm.Reject})
		So(n.RequestLicense(drm.Config{LicenseServerURL: "https://other"}, nil, nil), ShouldBeNil)

		f := newFixture(protectedConfig(), player.WithNegotiator(n))
		evt, _ := f.host.Last(event.Error)
		So(evt.Payload.(*player.Error).Code, ShouldEqual, "drm:request_in_flight")
		So(f.el.Sources, ShouldBeEmpty)
	})
}
