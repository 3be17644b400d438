package where

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tvplay-cli/tvplay/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config() honours the override variable", func() {
			t.Setenv(EnvConfigPath, "/custom/tvplay")
			So(Config(), ShouldEqual, "/custom/tvplay")
			So(lo.Must(filesystem.API().IsDir("/custom/tvplay")), ShouldBeTrue)
		})

		Convey("Logs() lives under the config directory", func() {
			t.Setenv(EnvConfigPath, "/custom/tvplay")
			So(Logs(), ShouldEqual, filepath.Join("/custom/tvplay", "logs"))
			So(lo.Must(filesystem.API().IsDir(Logs())), ShouldBeTrue)
		})

		Convey("History() is a file path, not a directory", func() {
			t.Setenv(EnvConfigPath, "/custom/tvplay")
			So(History(), ShouldEqual, filepath.Join("/custom/tvplay", "history.json"))
			So(lo.Must(filesystem.API().Exists(History())), ShouldBeFalse)
		})

		Convey("Temp() exists", func() {
			So(lo.Must(filesystem.API().IsDir(Temp())), ShouldBeTrue)
		})
	})
}
