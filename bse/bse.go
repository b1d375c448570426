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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/stockparfait/bsedata/tabular"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

type contextKey int

const (
	clientContextKey contextKey = iota
	httpClientContextKey
)

// dateToken is the placeholder in Config.BhavcopyURL replaced by the
// DDMMMYY-formatted date, e.g. "04JAN21".
const dateToken = "{date}"

// Config is the immutable endpoint table of the exchange. The zero value is
// not usable; start from DefaultConfig and override fields as needed, e.g. to
// point the client at a mock server in tests.
type Config struct {
	EquityListURL     string `toml:"equity_list_url"`
	IndicesURL        string `toml:"indices_url"`
	QuoteURL          string `toml:"quote_url"`
	PeerComparisonURL string `toml:"peer_comparison_url"`
	// BhavcopyURL must contain the "{date}" token.
	BhavcopyURL string `toml:"bhavcopy_url"`
	// TransientDir is the root for transient archive downloads.
	TransientDir string `toml:"transient_dir"`
}

// DefaultConfig returns the production endpoint values.
func DefaultConfig() Config {
	return Config{
		EquityListURL:     "https://www.bseindia.com/corporates/List_Scrips.aspx",
		IndicesURL:        "https://api.bseindia.com/BseIndiaAPI/api/GetSensexData/w",
		QuoteURL:          "https://api.bseindia.com/BseIndiaAPI/api/getScripHeaderData/w",
		PeerComparisonURL: "https://api.bseindia.com/BseIndiaAPI/api/ComparePeers/w",
		BhavcopyURL:       "https://www.bseindia.com/download/BhavCopy/Equity/EQ{date}_CSV.ZIP",
		TransientDir:      os.TempDir(),
	}
}

// Client for querying the exchange endpoints.
type Client struct {
	config Config
}

// newClient creates a new client.
func newClient(config Config) *Client {
	return &Client{config: config}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient creates a new client from the config and injects it into the
// context.
func UseClient(ctx context.Context, config Config) context.Context {
	return context.WithValue(ctx, clientContextKey, newClient(config))
}

// UseHTTPClient injects the *http.Client used for POST requests into the
// context, e.g. to route them through a mock server's client in tests. GET
// requests are routed with fetch.UseClient instead. Without an injected
// client, POST requests use http.DefaultClient.
func UseHTTPClient(ctx context.Context, c *http.Client) context.Context {
	return context.WithValue(ctx, httpClientContextKey, c)
}

func getHTTPClient(ctx context.Context) *http.Client {
	c, ok := ctx.Value(httpClientContextKey).(*http.Client)
	if !ok {
		return http.DefaultClient
	}
	return c
}

// equityListForm is the static form body expected by the equity list
// endpoint.
var equityListForm = url.Values{
	"ddlSegment": {"Equity"},
	"ddlStatus":  {"Active"},
	"btnSubmit":  {"Submit"},
}

// EquityList downloads the full listing of active securities and returns it
// as a parsed table. The payload must carry the "isin_no" column.
func EquityList(ctx context.Context) (*tabular.Table, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("no client in context")
	}
	body, err := postForm(ctx, client.config.EquityListURL, equityListForm)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download the equity list")
	}
	t, err := tabular.Parse(body, "isin_no")
	if err != nil {
		return nil, errors.Annotate(err, "failed to parse the equity list")
	}
	logging.Infof(ctx, "BSE: downloaded equity list with %d securities", len(t.Records))
	return t, nil
}

// Indices returns the current values of the exchange indices as an opaque
// JSON object.
func Indices(ctx context.Context) (map[string]interface{}, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("no client in context")
	}
	v, err := getJSON(ctx, client.config.IndicesURL, nil)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch index values")
	}
	return v, nil
}

// Quote returns the raw quote payload for the security identified by its
// exchange-assigned scrip code.
func Quote(ctx context.Context, scripCode string) (map[string]interface{}, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("no client in context")
	}
	query := url.Values{"scripcode": {scripCode}}
	v, err := getJSON(ctx, client.config.QuoteURL, query)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch quote for scrip %s", scripCode)
	}
	return v, nil
}

// PeerComparison returns the raw peer comparison payload for the security
// identified by its scrip code.
func PeerComparison(ctx context.Context, scripCode string) (map[string]interface{}, error) {
	client := GetClient(ctx)
	if client == nil {
		return nil, errors.Reason("no client in context")
	}
	query := url.Values{"scripcode": {scripCode}}
	v, err := getJSON(ctx, client.config.PeerComparisonURL, query)
	if err != nil {
		return nil, errors.Annotate(err, "failed to fetch peers for scrip %s", scripCode)
	}
	return v, nil
}

// getJSON fetches uri and decodes the body as a JSON object. Transport
// failures carry ErrNetwork; an empty or undecodable body carries
// ErrInvalidResponse.
func getJSON(ctx context.Context, uri string, query url.Values) (map[string]interface{}, error) {
	resp, err := fetch.GetRetry(ctx, uri, query, nil)
	if err != nil {
		return nil, wrapKind(ErrNetwork, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapKind(ErrNetwork, errors.Annotate(err, "failed to read body of '%s'", uri))
	}
	if len(data) == 0 {
		return nil, errors.Annotate(ErrInvalidResponse, "empty body from '%s'", uri)
	}
	var v map[string]interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, wrapKind(ErrInvalidResponse,
			errors.Annotate(err, "body of '%s' is not a JSON object", uri))
	}
	return v, nil
}

// postForm sends a form-encoded POST request and returns the response body as
// text.
func postForm(ctx context.Context, uri string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, uri, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Annotate(err, "failed to create POST request for '%s'", uri)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := getHTTPClient(ctx).Do(req)
	if err != nil {
		return "", wrapKind(ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Annotate(ErrInvalidResponse,
			"unexpected status '%s' from '%s'", resp.Status, uri)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapKind(ErrNetwork, errors.Annotate(err, "failed to read body of '%s'", uri))
	}
	return string(data), nil
}
