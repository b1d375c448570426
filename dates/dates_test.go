// Copyright 2024 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dates

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDates(t *testing.T) {
	t.Parallel()

	Convey("Date type", t, func() {
		Convey("creates a value from its parts", func() {
			d := NewDate(2021, 1, 4)
			So(d.Year(), ShouldEqual, 2021)
			So(d.Month(), ShouldEqual, 1)
			So(d.Day(), ShouldEqual, 4)
			So(d.String(), ShouldEqual, "2021-01-04")
		})

		Convey("creates a value from time.Time", func() {
			tm := time.Date(2019, time.November, 10, 23, 15, 0, 0, time.UTC)
			So(NewDateFromTime(tm), ShouldResemble, NewDate(2019, 11, 10))
		})

		Convey("parses accepted string layouts", func() {
			for _, s := range []string{"2019-01-02", "02 Jan 2019"} {
				d, err := NewDateFromString(s)
				So(err, ShouldBeNil)
				So(d, ShouldResemble, NewDate(2019, 1, 2))
			}
		})

		Convey("fails to parse garbage", func() {
			_, err := NewDateFromString("yesterday-ish")
			So(err, ShouldNotBeNil)
		})

		Convey("converts to time.Time in UTC", func() {
			So(NewDate(2019, 1, 2).ToTime(), ShouldResemble,
				time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC))
		})

		Convey("compares the dates correctly", func() {
			So(NewDate(2019, 10, 15).After(NewDate(2018, 11, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 11, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 10, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).After(NewDate(2019, 10, 5)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 10, 15)), ShouldBeFalse)
		})

		Convey("zero value", func() {
			So(Date{}.IsZero(), ShouldBeTrue)
			So(NewDate(2019, 1, 2).IsZero(), ShouldBeFalse)
		})

		Convey("round-trips through JSON", func() {
			d := NewDate(2020, 2, 29)
			js, err := json.Marshal(d)
			So(err, ShouldBeNil)
			So(string(js), ShouldEqual, `"2020-02-29"`)
			var d2 Date
			So(json.Unmarshal(js, &d2), ShouldBeNil)
			So(d2, ShouldResemble, d)
		})

		Convey("rejects non-string JSON", func() {
			var d Date
			So(json.Unmarshal([]byte(`20200229`), &d), ShouldNotBeNil)
		})
	})
}
