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
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/stockparfait/bsedata/bse"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	Config   string
	LogLevel logging.Level
	// Exactly one of scrips or indices must be present.
	Scrips  string // comma-separated scrip codes to quote
	Indices bool   // print the current index values
	Peers   bool   // also fetch peer comparisons for each scrip
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("bse-quote", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "optional TOML config overriding endpoint URLs")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.StringVar(&flags.Scrips, "scrips", "", "comma-separated scrip codes to quote")
	fs.BoolVar(&flags.Indices, "indices", false, "print the current index values")
	fs.BoolVar(&flags.Peers, "peers", false, "also fetch peer comparisons for each scrip")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	kinds := 0
	if flags.Scrips != "" {
		kinds++
	}
	if flags.Indices {
		kinds++
	}
	if kinds != 1 {
		return nil, errors.Reason("expected exactly one of -scrips or -indices")
	}
	return &flags, nil
}

func parseConfig(filePath string) (bse.Config, error) {
	config := bse.DefaultConfig()
	if filePath == "" {
		return config, nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		return config, errors.Annotate(err, "failed to open config file '%s'", filePath)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&config); err != nil {
		return config, errors.Annotate(err, "failed to read config file '%s'", filePath)
	}
	return config, nil
}

// scripResult is the output record for a single scrip code.
type scripResult struct {
	Scrip string                 `json:"scrip"`
	Quote map[string]interface{} `json:"quote,omitempty"`
	Peers map[string]interface{} `json:"peers,omitempty"`
	Error string                 `json:"error,omitempty"`
}

// fetchScrips quotes all the scrips concurrently. A failed scrip yields a
// result with its error message rather than failing the entire batch.
func fetchScrips(ctx context.Context, scrips []string, peers bool) []scripResult {
	f := func(scrip string) scripResult {
		res := scripResult{Scrip: scrip}
		q, err := bse.Quote(ctx, scrip)
		if err != nil {
			logging.Warningf(ctx, "failed to quote %s: %s", scrip, err.Error())
			res.Error = err.Error()
			return res
		}
		res.Quote = q
		if peers {
			p, err := bse.PeerComparison(ctx, scrip)
			if err != nil {
				logging.Warningf(ctx, "failed to fetch peers of %s: %s", scrip, err.Error())
				res.Error = err.Error()
				return res
			}
			res.Peers = p
		}
		return res
	}
	pm := iterator.ParallelMap(ctx, 2*runtime.NumCPU(), iterator.FromSlice(scrips), f)
	defer pm.Close()

	results := iterator.Reduce[scripResult, []scripResult](pm, []scripResult{},
		func(r scripResult, rs []scripResult) []scripResult {
			return append(rs, r)
		})
	sort.Slice(results, func(i, j int) bool { return results[i].Scrip < results[j].Scrip })
	return results
}

func splitScrips(s string) []string {
	var scrips []string
	for _, sc := range strings.Split(s, ",") {
		sc = strings.TrimSpace(sc)
		if sc != "" {
			scrips = append(scrips, sc)
		}
	}
	return scrips
}

func run(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	ctx = bse.UseClient(ctx, config)

	var v interface{}
	if flags.Indices {
		indices, err := bse.Indices(ctx)
		if err != nil {
			return errors.Annotate(err, "failed to fetch index values")
		}
		v = indices
	} else {
		v = fetchScrips(ctx, splitScrips(flags.Scrips), flags.Peers)
	}
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Annotate(err, "failed to serialize the result")
	}
	if _, err := fmt.Fprintf(w, "%s\n", js); err != nil {
		return errors.Annotate(err, "failed to write the result")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := run(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
