// Package sanitize removes connection-specific header fields from HTTP
// response header collections. These fields are only meaningful for a
// single HTTP/1.x connection and are not allowed on a multiplexed,
// framed transport, so a proxy relaying backend responses over HTTP/2
// has to strip them before writing the response downstream.
package sanitize

import (
	"net/http"
	"strings"
)

// DefaultDenylist contains the header names that must not be relayed
// over a multiplexed, framed transport. The entries are kept lowercase,
// matching against incoming header names is case-insensitive.
var DefaultDenylist = []string{
	"connection",
	"keep-alive",
	"proxy-connection",
	"transfer-encoding",
	"upgrade",
}

// Sanitizer removes a fixed set of header names from header
// collections. Instances are immutable after construction and safe for
// concurrent use from any number of goroutines. The zero value removes
// nothing.
type Sanitizer struct {
	deny map[string]bool
}

// New creates a sanitizer for the given denylist. The names are
// matched case-insensitively against incoming header names. A nil or
// empty denylist yields a sanitizer that removes nothing.
func New(denylist []string) *Sanitizer {
	deny := make(map[string]bool, len(denylist))
	for _, name := range denylist {
		deny[strings.ToLower(name)] = true
	}

	return &Sanitizer{deny: deny}
}

// Default creates a sanitizer with the DefaultDenylist.
func Default() *Sanitizer { return New(DefaultDenylist) }

// Denies reports whether the given header name matches the denylist.
func (s *Sanitizer) Denies(name string) bool {
	return s.deny[strings.ToLower(name)]
}

// Sanitize removes every entry of h whose name matches the denylist,
// regardless of casing and multiplicity, and reports the number of
// removed header lines. All other entries are left untouched. Names
// are compared in lowercase form instead of relying on map key
// canonicalization, so entries constructed without
// http.CanonicalHeaderKey are caught as well.
func (s *Sanitizer) Sanitize(h http.Header) int {
	removed := 0
	for name, values := range h {
		if s.deny[strings.ToLower(name)] {
			removed += len(values)
			delete(h, name)
		}
	}

	return removed
}

// Clean returns a filtered copy of h, leaving h unmodified. The kept
// entries keep their name casing and share the value slices with the
// input.
func (s *Sanitizer) Clean(h http.Header) http.Header {
	hh := make(http.Header, len(h))
	for name, values := range h {
		if !s.deny[strings.ToLower(name)] {
			hh[name] = values
		}
	}

	return hh
}
