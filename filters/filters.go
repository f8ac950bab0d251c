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

// Package filters contains the interface definitions of the filter
// extension point of the proxy.
package filters

import (
	"errors"
	"net/http"
)

// Context object providing the request and response objects to the
// filters.
type FilterContext interface {

	// The response writer of the incoming request.
	ResponseWriter() http.ResponseWriter

	// The incoming request.
	Request() *http.Request

	// The response received from the backend. Nil while processing
	// the request.
	Response() *http.Response

	// Returns true when the response was already served, e.g. by
	// another filter.
	Served() bool

	// Marks the response as served. The proxy will not write the
	// backend response after this.
	MarkServed()

	// Allows filters to pass state to each other during the handling
	// of a single request. Filter instances themselves are shared
	// between requests and must not store per-request state.
	StateBag() map[string]interface{}
}

// Filters are created by Spec objects, optionally with filter specific
// settings. Filter instances are shared between requests, so any state
// stored with a filter is shared, too (as in don't do that).
type Filter interface {

	// Called on incoming requests. FilterContext.Response() returns
	// nil at this stage.
	Request(FilterContext)

	// Called after the response was received from the backend.
	Response(FilterContext)
}

// Spec objects create filter instances from the settings found in the
// configuration. A spec is identified by its name.
type Spec interface {

	// The name of the filter spec, used to identify it in the
	// configuration.
	Name() string

	// Creates a filter instance with the given config parameters.
	CreateFilter(config []interface{}) (Filter, error)
}

// Registry used to look up Spec objects by name while composing the
// response path.
type Registry map[string]Spec

// Registers a filter specification.
func (r Registry) Register(s Spec) { r[s.Name()] = s }

// ErrInvalidFilterParameters is used in place of the filter specific
// validation errors.
var ErrInvalidFilterParameters = errors.New("invalid filter parameters")
