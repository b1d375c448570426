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

// Package bse implements a client for the public data endpoints of the Bombay
// Stock Exchange (BSE).
//
// The client is injected into a context with UseClient, together with the
// Config holding the endpoint URLs, and every operation is a package-level
// function on that context. JSON endpoints (index values, per-security quotes
// and peer comparisons) are passed through as opaque JSON objects. The equity
// list and the daily bhavcopy archive are tabular payloads parsed by the
// tabular package. GET requests honor fetch.UseClient; the equity list POST
// honors UseHTTPClient, defaulting to http.DefaultClient.
//
// Failures carry a distinguishable kind: ErrNetwork for transport errors
// (retry may help), ErrInvalidResponse and tabular.ErrMalformedPayload for
// bodies that arrived but cannot be interpreted, and ErrArchive for
// unreadable or empty bhavcopy archives. Nothing is retried or cached by this
// package; every call performs exactly one request.
package bse
