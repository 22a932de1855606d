package onboard

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func simConfig(dir string) SyncConfig {
	c := SyncConfig{
		Version: "1.0.0",
		Name:    "lift_test",
		Store:   filepath.Join(dir, "info.txt"),
		Tuning:  DefaultTuning(),
	}
	c.Tuning.ControlInterval = time.Millisecond
	c.Tuning.TelemetryInterval = 5 * time.Millisecond
	return c
}

func TestSimulatedDevice(t *testing.T) {
	dir, err := ioutil.TempDir("", "goactsync")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	Convey("A simulated device comes up without touching hardware", t, func() {
		d, err := NewDevice(simConfig(dir), true)
		So(err, ShouldBeNil)
		So(d.Controller, ShouldNotBeNil)

		Convey("state snapshots carry the whole surface", func() {
			state := d.GetState()
			So(state.Name, ShouldEqual, "lift_test")
			So(state.Active, ShouldBeFalse)
			So(state.Acceleration.Z(), ShouldAlmostEqual, 9.81, 1)
		})

		Convey("a persisted record seeds the positions on the next boot", func() {
			d.Controller.Seed(1200, 1230)
			store := NewPositionStore(filepath.Join(dir, "info.txt"), "lift_test")
			So(store.Store(1200, 1230), ShouldBeNil)

			d2, err := NewDevice(simConfig(dir), true)
			So(err, ShouldBeNil)

			posA, posB := d2.Controller.Positions()
			So(posA, ShouldEqual, 1200)
			So(posB, ShouldEqual, 1230)
			So(d2.Controller.Target(), ShouldEqual, 1215)
		})
	})
}

func TestTelemetryFormat(t *testing.T) {
	dir, err := ioutil.TempDir("", "goactsync")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	Convey("telemetry lines match the scraped format", t, func() {
		d, err := NewDevice(simConfig(dir), true)
		So(err, ShouldBeNil)
		d.Controller.Seed(42, 43)

		var buf bytes.Buffer
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		d.Telemetry(ctx, &buf) // blocks until the context ends

		line := regexp.MustCompile(`^42 43( -?\d+\.\d\d){6}\n`)
		So(line.MatchString(buf.String()), ShouldBeTrue)
	})
}
