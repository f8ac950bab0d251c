// Copyright 2015 Zalando SE
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package builtin

import (
	"github.com/zalando/hopstrip/filters"
	"github.com/zalando/hopstrip/sanitize"
)

type sanitizeHeaders struct {
	sanitizer *sanitize.Sanitizer
}

// Returns a filter specification that removes connection-specific
// headers from responses. Instances accept any number of optional
// string parameters that extend the default denylist.
// Name: "sanitizeResponseHeaders".
func NewSanitizeResponseHeaders() filters.Spec { return &sanitizeHeaders{} }

func (spec *sanitizeHeaders) Name() string { return SanitizeResponseHeadersName }

func (spec *sanitizeHeaders) CreateFilter(config []interface{}) (filters.Filter, error) {
	denylist := make([]string, 0, len(sanitize.DefaultDenylist)+len(config))
	denylist = append(denylist, sanitize.DefaultDenylist...)
	for _, arg := range config {
		name, ok := arg.(string)
		if !ok {
			return nil, filters.ErrInvalidFilterParameters
		}

		denylist = append(denylist, name)
	}

	return &sanitizeHeaders{sanitizer: sanitize.New(denylist)}, nil
}

func (f *sanitizeHeaders) Request(ctx filters.FilterContext) {}

func (f *sanitizeHeaders) Response(ctx filters.FilterContext) {
	f.sanitizer.Sanitize(ctx.Response().Header)
}
