/*
Package proxy implements a minimal forwarding proxy for a single
backend. Its one job besides forwarding is to sanitize the response
header collections: every response received from the backend has the
connection-specific header fields removed before the status, headers
and body are written to the client. Request headers are never modified.
*/
package proxy

import (
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zalando/hopstrip/filters"
	"github.com/zalando/hopstrip/logging"
	"github.com/zalando/hopstrip/metrics"
	"github.com/zalando/hopstrip/sanitize"
)

const (
	// DefaultBackendTimeout is applied to the backend dial and to
	// waiting for the response headers when Params.BackendTimeout
	// is not set.
	DefaultBackendTimeout = 60 * time.Second

	defaultKeepalive = 30 * time.Second
)

// Params to create a proxy instance.
type Params struct {

	// Target is the backend that all requests are forwarded to.
	Target *url.URL

	// Sanitizer applied to every response header collection before
	// it is written downstream. When nil, sanitize.Default() is
	// used.
	Sanitizer *sanitize.Sanitizer

	// ResponseFilters are applied to the responses after
	// sanitization, in reverse order.
	ResponseFilters []filters.Filter

	// PreserveHost forwards the incoming Host header to the
	// backend instead of the target host.
	PreserveHost bool

	// Metrics backend, optional.
	Metrics *metrics.Metrics

	// When set, no access log entries are written.
	AccessLogDisabled bool

	// BackendTimeout limits dialing the backend and waiting for
	// its response headers.
	BackendTimeout time.Duration

	// Transport used for the backend requests. When nil, a
	// transport honoring BackendTimeout is created. Used by tests.
	Transport http.RoundTripper
}

// Proxy instances implement hopstrip proxying. Create them with New.
type Proxy struct {
	target            *url.URL
	sanitizer         *sanitize.Sanitizer
	responseFilters   []filters.Filter
	preserveHost      bool
	metrics           *metrics.Metrics
	accessLogDisabled bool
	roundTripper      http.RoundTripper
}

// New creates a proxy instance. It panics on a missing target, since
// there is nothing to forward to.
func New(p Params) *Proxy {
	if p.Target == nil {
		panic("proxy: missing target")
	}

	if p.Sanitizer == nil {
		p.Sanitizer = sanitize.Default()
	}

	if p.BackendTimeout <= 0 {
		p.BackendTimeout = DefaultBackendTimeout
	}

	if p.Transport == nil {
		p.Transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   p.BackendTimeout,
				KeepAlive: defaultKeepalive,
			}).DialContext,
			ResponseHeaderTimeout: p.BackendTimeout,
		}
	}

	return &Proxy{
		target:            p.Target,
		sanitizer:         p.Sanitizer,
		responseFilters:   p.ResponseFilters,
		preserveHost:      p.PreserveHost,
		metrics:           p.Metrics,
		accessLogDisabled: p.AccessLogDisabled,
		roundTripper:      p.Transport,
	}
}

func cloneHeader(h http.Header) http.Header {
	hh := make(http.Header, len(h))
	copyHeader(hh, h)
	return hh
}

func copyHeader(to, from http.Header) {
	for k, v := range from {
		to[http.CanonicalHeaderKey(k)] = v
	}
}

// creates the outgoing request for the backend based on the incoming
// one. The header collection is cloned unmodified: request headers are
// out of the sanitizer's reach.
func (p *Proxy) mapRequest(r *http.Request) (*http.Request, error) {
	u := *r.URL
	u.Scheme = p.target.Scheme
	u.Host = p.target.Host

	body := r.Body
	if r.ContentLength == 0 {
		body = nil
	}

	rr, err := http.NewRequestWithContext(r.Context(), r.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	rr.ContentLength = r.ContentLength
	rr.Header = cloneHeader(r.Header)
	if p.preserveHost {
		rr.Host = r.Host
	}

	return rr, nil
}

// counts the header lines that the sanitizer is about to remove, for
// the per-name metrics.
func (p *Proxy) countDenied(h http.Header) {
	if p.metrics == nil {
		return
	}

	for name, values := range h {
		if p.sanitizer.Denies(name) {
			p.metrics.IncRemoved(name, len(values))
		}
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := p.mapRequest(r)
	if err != nil {
		log.Errorf("could not map backend request: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rs, err := p.roundTripper.RoundTrip(req)
	if err != nil {
		log.Errorf("backend roundtrip to %v failed: %v", p.target, err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	defer rs.Body.Close()

	p.countDenied(rs.Header)
	removed := p.sanitizer.Sanitize(rs.Header)
	if removed > 0 {
		log.Debugf("removed %d connection-specific header line(s) from response to %s %s", removed, r.Method, r.URL.Path)
		if p.metrics != nil {
			p.metrics.IncSanitized()
		}
	}

	ctx := &filterContext{
		responseWriter: w,
		request:        r,
		response:       rs,
		stateBag:       make(map[string]interface{}),
	}

	for i := len(p.responseFilters) - 1; i >= 0; i-- {
		p.responseFilters[i].Response(ctx)
	}

	var size int64
	if !ctx.served {
		copyHeader(w.Header(), rs.Header)
		w.WriteHeader(rs.StatusCode)
		size, err = io.Copy(w, rs.Body)
		if err != nil {
			log.Errorf("error while copying the response stream: %v", err)
		}
	}

	if p.metrics != nil {
		p.metrics.MeasureResponse(rs.StatusCode, r.Method, start)
	}

	if !p.accessLogDisabled {
		logging.LogAccess(&logging.AccessEntry{
			Request:        r,
			StatusCode:     rs.StatusCode,
			ResponseSize:   size,
			Duration:       time.Since(start),
			RequestTime:    start,
			RemovedHeaders: removed,
		})
	}
}
