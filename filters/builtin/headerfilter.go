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
)

type dropHeaderFilter struct {
	key string
}

// Returns a filter specification that removes a single header from
// responses. Instances expect one parameter: the header name.
// Name: "dropResponseHeader".
func NewDropResponseHeader() filters.Spec { return &dropHeaderFilter{} }

func (spec *dropHeaderFilter) Name() string { return DropResponseHeaderName }

func (spec *dropHeaderFilter) CreateFilter(config []interface{}) (filters.Filter, error) {
	if len(config) != 1 {
		return nil, filters.ErrInvalidFilterParameters
	}

	key, ok := config[0].(string)
	if !ok {
		return nil, filters.ErrInvalidFilterParameters
	}

	return &dropHeaderFilter{key: key}, nil
}

func (f *dropHeaderFilter) Request(ctx filters.FilterContext) {}

func (f *dropHeaderFilter) Response(ctx filters.FilterContext) {
	ctx.Response().Header.Del(f.key)
}
