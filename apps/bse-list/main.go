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
	"flag"
	"io"
	"os"

	"github.com/stockparfait/bsedata/bse"
	"github.com/stockparfait/bsedata/tabular"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	Config   string // optional TOML file overriding endpoint URLs
	Out      string // output file; default: stdout
	CSV      bool   // dump CSV format; default: text
	LogLevel logging.Level
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("bse-list", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "optional TOML config overriding endpoint URLs")
	fs.StringVar(&flags.Out, "out", "", "output file; default: stdout")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	err := fs.Parse(args)
	return &flags, err
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

func run(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	ctx = bse.UseClient(ctx, config)

	tbl, err := bse.EquityList(ctx)
	if err != nil {
		return errors.Annotate(err, "failed to fetch the equity list")
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, tabular.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, tabular.Params{}); err != nil {
		return errors.Annotate(err, "failed to print text")
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

	var w io.Writer = os.Stdout
	if flags.Out != "" {
		f, err := os.OpenFile(flags.Out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			logging.Errorf(ctx, "failed to open output file '%s': %s", flags.Out, err.Error())
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := run(ctx, flags, w); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
