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
	"fmt"

	"github.com/stockparfait/errors"
)

// Error kinds attached to failures of the client operations. Test with
// errors.Is to decide whether a retry can help (ErrNetwork) or the payload is
// permanently unusable (ErrInvalidResponse, ErrArchive,
// tabular.ErrMalformedPayload).
var (
	ErrNetwork         = errors.Reason("network failure")
	ErrInvalidResponse = errors.Reason("invalid response")
	ErrArchive         = errors.Reason("unreadable archive")
)

// wrapKind attaches a kind to err such that errors.Is matches both the kind
// and the original error chain.
func wrapKind(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
