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

// Package tabular parses the comma-separated tabular payloads served by the
// exchange into ordered sequences of records.
//
// The payloads are plain comma-separated text with a single header line.
// Fields are split on "," with no quoting or escaping support; a comma inside
// a field value breaks the row apart. This is a known limitation of the wire
// format, not something this package attempts to repair. Field values are
// kept as raw strings exactly as received; any numeric interpretation is up
// to the caller.
package tabular

import (
	"strings"

	"github.com/stockparfait/errors"
)

// ErrMalformedPayload indicates a payload that cannot be interpreted as a
// header line plus data lines. Test with errors.Is.
var ErrMalformedPayload = errors.Reason("malformed payload")

// Record is a single data row: normalized column name -> raw field value.
// A row with fewer fields than columns simply lacks the trailing keys.
type Record map[string]string

// Table is a parsed tabular payload: the normalized columns in header order,
// and the records in their original row order. Row order reflects
// exchange-assigned sequencing and is preserved throughout.
type Table struct {
	Columns []string
	Records []Record
}

// NormalizeColumn converts a raw header token to its canonical form:
// surrounding whitespace removed, lowercased, interior spaces replaced by
// underscores. The function is idempotent.
func NormalizeColumn(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// splitLines splits on any run of carriage-return or line-feed characters,
// so blank lines and CRLF endings never produce empty rows.
func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
}

// Parse interprets raw as a header line followed by data lines and returns
// the resulting Table. It fails with ErrMalformedPayload when raw has fewer
// than two lines, or when any of the required normalized columns is missing
// from the header.
//
// Each data line is zipped positionally against the header columns: short
// rows yield records with missing keys, extra fields past the last column are
// dropped.
func Parse(raw string, required ...string) (*Table, error) {
	lines := splitLines(raw)
	if len(lines) < 2 {
		return nil, errors.Annotate(ErrMalformedPayload,
			"expected a header and at least one data line, got %d line(s)", len(lines))
	}
	header := strings.Split(lines[0], ",")
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = NormalizeColumn(h)
	}
	for _, req := range required {
		found := false
		for _, c := range columns {
			if c == req {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Annotate(ErrMalformedPayload,
				"header %v is missing the required column '%s'", columns, req)
		}
	}
	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		rec := make(Record, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				rec[col] = fields[i]
			}
		}
		records = append(records, rec)
	}
	return &Table{Columns: columns, Records: records}, nil
}
