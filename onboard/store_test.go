package onboard

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPositionStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "goactsync")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "info.txt")

	Convey("With a store for a lift unit", t, func() {
		s := NewPositionStore(path, "lift_rear")

		Convey("store then load round trips exactly", func() {
			So(s.Store(1234, -56), ShouldBeNil)

			tag, posA, posB, err := s.Load()
			So(err, ShouldBeNil)
			So(tag, ShouldEqual, "lift_rear")
			So(posA, ShouldEqual, 1234)
			So(posB, ShouldEqual, -56)
		})

		Convey("a second store overwrites the single record", func() {
			So(s.Store(1, 2), ShouldBeNil)
			So(s.Store(4500, 4550), ShouldBeNil)

			_, posA, posB, err := s.Load()
			So(err, ShouldBeNil)
			So(posA, ShouldEqual, 4500)
			So(posB, ShouldEqual, 4550)

			Convey("and no temp file is left behind", func() {
				_, err := os.Stat(path + ".tmp")
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("the record is the documented three line format", func() {
			So(s.Store(10, 20), ShouldBeNil)
			raw, err := ioutil.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, "lift_rear\n10\n20\n")
		})
	})

	Convey("A missing record reports an error instead of inventing zeros", t, func() {
		s := NewPositionStore(filepath.Join(dir, "nope.txt"), "test")
		_, _, _, err := s.Load()
		So(err, ShouldNotBeNil)
	})

	Convey("A truncated record is rejected", t, func() {
		bad := filepath.Join(dir, "bad.txt")
		ioutil.WriteFile(bad, []byte("test\n123"), 0644)

		s := NewPositionStore(bad, "test")
		_, _, _, err := s.Load()
		So(err, ShouldNotBeNil)
	})
}
