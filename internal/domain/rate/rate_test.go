package rate_test

import (
	"errors"
	"testing"

	"github.com/okian/chartrec/internal/domain/rate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given achievement rates around the bounds", t, func() {
		So(rate.Validate(0), ShouldBeNil)
		So(rate.Validate(1010000), ShouldBeNil)
		So(errors.Is(rate.Validate(-1), rate.ErrOutOfRange), ShouldBeTrue)
		So(errors.Is(rate.Validate(1010001), rate.ErrOutOfRange), ShouldBeTrue)
	})
}

func TestClampAndCoerce(t *testing.T) {
	Convey("Given free-form input", t, func() {
		So(rate.Clamp(-5), ShouldEqual, 0)
		So(rate.Clamp(2000000), ShouldEqual, rate.Max)
		So(rate.Clamp(950000), ShouldEqual, 950000)

		So(rate.Coerce("950000"), ShouldEqual, 950000)
		So(rate.Coerce(" 12 "), ShouldEqual, 12)
		So(rate.Coerce("12.9"), ShouldEqual, 12)
		So(rate.Coerce(""), ShouldEqual, 0)
		So(rate.Coerce("abc"), ShouldEqual, 0)
		So(rate.Coerce("-3"), ShouldEqual, 0)
		So(rate.Coerce("99999999999999999999"), ShouldEqual, rate.Max)
		So(rate.Coerce("NaN"), ShouldEqual, 0)
		So(rate.Coerce("+Inf"), ShouldEqual, rate.Max)
	})
}

func TestFormat(t *testing.T) {
	Convey("Given integer rates", t, func() {
		So(rate.Format(1010000), ShouldEqual, "101.0000%")
		So(rate.Format(950000), ShouldEqual, "95.0000%")
		So(rate.Format(999999), ShouldEqual, "99.9999%")
		So(rate.Format(5), ShouldEqual, "0.0005%")
		So(rate.Format(0), ShouldEqual, "0.0000%")
	})
}

func TestParse(t *testing.T) {
	Convey("Given textual rates", t, func() {
		Convey("When the input is the raw integer form", func() {
			r, err := rate.Parse("1005000")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 1005000)
		})

		Convey("When the input is a percentage", func() {
			r, err := rate.Parse("100.5%")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 1005000)

			r, err = rate.Parse("99.9999%")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 999999)

			r, err = rate.Parse("98%")
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 980000)
		})

		Convey("When a percentage round-trips through Format", func() {
			r, err := rate.Parse(rate.Format(1002345))
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 1002345)
		})

		Convey("When the input is out of range", func() {
			_, err := rate.Parse("101.0001%")
			So(errors.Is(err, rate.ErrOutOfRange), ShouldBeTrue)

			_, err = rate.Parse("-1")
			So(errors.Is(err, rate.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("When the input is malformed", func() {
			_, err := rate.Parse("")
			So(errors.Is(err, rate.ErrEmpty), ShouldBeTrue)

			_, err = rate.Parse("12.34567%")
			So(errors.Is(err, rate.ErrSyntax), ShouldBeTrue)

			_, err = rate.Parse("abc")
			So(errors.Is(err, rate.ErrSyntax), ShouldBeTrue)

			_, err = rate.Parse(".5%")
			So(errors.Is(err, rate.ErrSyntax), ShouldBeTrue)
		})
	})
}
