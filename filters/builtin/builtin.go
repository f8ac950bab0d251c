/*
Package builtin provides the default set of filters.
*/
package builtin

import (
	"github.com/zalando/hopstrip/filters"
)

const (
	SanitizeResponseHeadersName = "sanitizeResponseHeaders"
	DropResponseHeaderName      = "dropResponseHeader"
)

// Returns a Registry object initialized with the default set of filter
// specifications found in this package.
func MakeRegistry() filters.Registry {
	r := make(filters.Registry)
	for _, s := range []filters.Spec{
		NewSanitizeResponseHeaders(),
		NewDropResponseHeader(),
	} {
		r.Register(s)
	}

	return r
}
