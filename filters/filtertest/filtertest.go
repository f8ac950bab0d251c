// Package filtertest implements mocks for the filter interfaces,
// intended for testing.
package filtertest

import (
	"net/http"

	"github.com/zalando/hopstrip/filters"
)

// Noop filter, used to verify the filter name and the args in tests.
type Filter struct {
	FilterName string
	Args       []interface{}
}

// Simple FilterContext implementation.
type Context struct {
	FResponseWriter http.ResponseWriter
	FRequest        *http.Request
	FResponse       *http.Response
	FServed         bool
	FStateBag       map[string]interface{}
}

func (f *Filter) Name() string                                         { return f.FilterName }
func (f *Filter) CreateFilter(config []interface{}) (filters.Filter, error) { return f, nil }
func (f *Filter) Request(ctx filters.FilterContext)                    {}
func (f *Filter) Response(ctx filters.FilterContext)                   {}

func (fc *Context) ResponseWriter() http.ResponseWriter { return fc.FResponseWriter }
func (fc *Context) Request() *http.Request              { return fc.FRequest }
func (fc *Context) Response() *http.Response            { return fc.FResponse }
func (fc *Context) Served() bool                        { return fc.FServed }
func (fc *Context) MarkServed()                         { fc.FServed = true }
func (fc *Context) StateBag() map[string]interface{}    { return fc.FStateBag }
