package network

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tvplay-cli/tvplay/filesystem"
	"github.com/tvplay-cli/tvplay/log"

	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	log.Use(io.Discard, "debug", false)
}

func TestContentType(t *testing.T) {
	Convey("Given a media server", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv("XDG_CACHE_HOME", "/cache")

		var heads atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			heads.Add(1)
			switch r.URL.Path {
			case "/movie":
				w.Header().Set("Content-Type", "video/mp4; charset=binary")
			case "/missing":
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		Reset(srv.Close)

		Convey("The media type is returned without parameters", func() {
			got, err := ContentType(context.Background(), srv.URL+"/movie")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "video/mp4")
			So(heads.Load(), ShouldEqual, 1)

			Convey("And the answer is cached", func() {
				got, err := ContentType(context.Background(), srv.URL+"/movie")
				So(err, ShouldBeNil)
				So(got, ShouldEqual, "video/mp4")
				So(heads.Load(), ShouldEqual, 1)
			})
		})

		Convey("Error statuses fail", func() {
			_, err := ContentType(context.Background(), srv.URL+"/missing")
			So(err, ShouldNotBeNil)
		})
	})
}
