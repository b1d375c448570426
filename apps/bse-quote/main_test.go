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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_bse_quote")
	defer os.RemoveAll(tmpdir)

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("parseFlags", t, func() {
		Convey("accepts scrips", func() {
			flags, err := parseFlags([]string{"-scrips", "500325,500112", "-peers",
				"-log-level", "debug"})
			So(err, ShouldBeNil)
			So(flags.Scrips, ShouldEqual, "500325,500112")
			So(flags.Peers, ShouldBeTrue)
			So(flags.LogLevel, ShouldEqual, logging.Debug)
		})

		Convey("accepts indices", func() {
			flags, err := parseFlags([]string{"-indices"})
			So(err, ShouldBeNil)
			So(flags.Indices, ShouldBeTrue)
		})

		Convey("requires exactly one of -scrips or -indices", func() {
			_, err := parseFlags([]string{})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-scrips", "500325", "-indices"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("splitScrips", t, func() {
		So(splitScrips("500325, 500112,,532540"),
			ShouldResemble, []string{"500325", "500112", "532540"})
	})

	Convey("run prints the index values", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{`{"sensex": "65721.25"}`}

		fileName := filepath.Join(tmpdir, "config.toml")
		err := os.WriteFile(fileName, []byte(
			`indices_url = "`+server.URL()+`/indices"
`), 0644)
		So(err, ShouldBeNil)

		ctx := fetch.UseClient(context.Background(), server.Client())
		var buf bytes.Buffer
		So(run(ctx, &Flags{Config: fileName, Indices: true}, &buf), ShouldBeNil)

		var v map[string]interface{}
		So(json.Unmarshal(buf.Bytes(), &v), ShouldBeNil)
		So(v["sensex"], ShouldEqual, "65721.25")
	})

	Convey("run quotes each scrip", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{`{"current_value": "2931.15"}`}

		fileName := filepath.Join(tmpdir, "quote.toml")
		err := os.WriteFile(fileName, []byte(
			`quote_url = "`+server.URL()+`/quote"
`), 0644)
		So(err, ShouldBeNil)

		ctx := fetch.UseClient(context.Background(), server.Client())
		var buf bytes.Buffer
		So(run(ctx, &Flags{Config: fileName, Scrips: "500325"}, &buf), ShouldBeNil)

		var results []scripResult
		So(json.Unmarshal(buf.Bytes(), &results), ShouldBeNil)
		So(len(results), ShouldEqual, 1)
		So(results[0].Scrip, ShouldEqual, "500325")
		So(results[0].Quote["current_value"], ShouldEqual, "2931.15")
		So(results[0].Error, ShouldBeEmpty)
	})

	Convey("run quotes several scrips concurrently, one sorted result each", t, func() {
		quote := `{"current_value": "2931.15"}`
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{quote, quote, quote}

		fileName := filepath.Join(tmpdir, "multi.toml")
		err := os.WriteFile(fileName, []byte(
			`quote_url = "`+server.URL()+`/quote"
`), 0644)
		So(err, ShouldBeNil)

		ctx := fetch.UseClient(context.Background(), server.Client())
		var buf bytes.Buffer
		So(run(ctx, &Flags{Config: fileName, Scrips: "532540,500325,500112"}, &buf),
			ShouldBeNil)

		var results []scripResult
		So(json.Unmarshal(buf.Bytes(), &results), ShouldBeNil)
		So(len(results), ShouldEqual, 3)
		for i, scrip := range []string{"500112", "500325", "532540"} {
			So(results[i].Scrip, ShouldEqual, scrip)
			So(results[i].Quote["current_value"], ShouldEqual, "2931.15")
			So(results[i].Error, ShouldBeEmpty)
		}
	})
}
