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

package bse

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockparfait/bsedata/dates"
	"github.com/stockparfait/bsedata/tabular"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// bhavcopyDate renders the date the way the archive URL expects it: two-digit
// day, uppercase month abbreviation, two-digit year, e.g. "04JAN21". The date
// is not checked against the exchange trading calendar; a non-trading day
// simply yields a URL the server answers with an error.
func bhavcopyDate(d dates.Date) string {
	return strings.ToUpper(d.ToTime().Format("02Jan06"))
}

// transientPath returns a uniquely named location under the configured
// transient root. Uniqueness of the name is what makes concurrent Bhavcopy
// calls safe; each call owns its own file and no locking is needed.
func (c *Client) transientPath() string {
	return filepath.Join(c.config.TransientDir, "bhavcopy-"+uuid.New().String()+".zip")
}

// Bhavcopy downloads the end-of-day trading summary archive for the given
// date, extracts its single tabular entry and returns the parsed table. The
// timeout covers the network phase only, including the body transfer;
// extraction and parsing are local. The downloaded archive is staged in a
// transient file that is removed on every exit path, including extraction and
// parse failures. Calling twice with the same date downloads twice; nothing
// is cached.
func Bhavcopy(ctx context.Context, date dates.Date, timeout time.Duration) (*tabular.Table, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("no client in context")
	}
	uri := strings.ReplaceAll(client.config.BhavcopyURL, dateToken, bhavcopyDate(date))
	path := client.transientPath()
	logging.Infof(ctx, "BSE: downloading bhavcopy for %s", date)
	if err := downloadFile(ctx, uri, path, timeout); err != nil {
		return nil, errors.Annotate(err, "failed to download bhavcopy for %s", date)
	}
	defer os.Remove(path)
	text, err := firstArchiveEntry(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to extract bhavcopy for %s", date)
	}
	t, err := tabular.Parse(text)
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse bhavcopy for %s", date)
	}
	logging.Infof(ctx, "BSE: bhavcopy for %s has %d rows", date, len(t.Records))
	return t, nil
}

// downloadFile streams the response body for uri into a newly created file at
// path. Transport failures, including the timeout firing, carry ErrNetwork. A
// failure mid-transfer removes the partially written file best-effort, so a
// failed download never leaves an artifact behind.
func downloadFile(ctx context.Context, uri, path string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := fetch.GetRetry(ctx, uri, nil, nil)
	if err != nil {
		return wrapKind(ErrNetwork, err)
	}
	defer resp.Body.Close()
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotate(err, "failed to create transient file '%s'", path)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return wrapKind(ErrNetwork, errors.Annotate(err, "download of '%s' was interrupted", uri))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.Annotate(err, "failed to finish writing '%s'", path)
	}
	return nil
}

// firstArchiveEntry opens path as a zip archive and returns the decoded text
// of its first entry. The archive is expected to contain exactly one file; no
// name matching is performed, and extra entries are ignored.
func firstArchiveEntry(path string) (string, error) {
	z, err := zip.OpenReader(path)
	if err != nil {
		return "", wrapKind(ErrArchive, err)
	}
	defer z.Close()
	if len(z.File) == 0 {
		return "", errors.Annotate(ErrArchive, "archive '%s' has no entries", path)
	}
	rc, err := z.File[0].Open()
	if err != nil {
		return "", wrapKind(ErrArchive,
			errors.Annotate(err, "failed to open entry '%s'", z.File[0].Name))
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", wrapKind(ErrArchive,
			errors.Annotate(err, "failed to read entry '%s'", z.File[0].Name))
	}
	return string(data), nil
}
