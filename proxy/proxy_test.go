package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando/hopstrip/filters"
	"github.com/zalando/hopstrip/filters/builtin"
	"github.com/zalando/hopstrip/sanitize"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func backendResponse(status int, header http.Header, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testTarget(t *testing.T) *url.URL {
	u, err := url.Parse("http://backend.test")
	require.NoError(t, err)
	return u
}

func TestRemovesConnectionHeadersFromResponse(t *testing.T) {
	p := New(Params{
		Target:            testTarget(t),
		AccessLogDisabled: true,
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			h := http.Header{}
			h.Set("Content-Type", "text/plain")
			h.Set("Connection", "keep-alive")
			h.Set("Keep-Alive", "timeout=72")
			return backendResponse(http.StatusOK, h, "Successful request"), nil
		}),
	})

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "http://proxy.test/", nil))

	rs := w.Result()
	assert.Equal(t, http.StatusOK, rs.StatusCode)
	assert.Empty(t, rs.Header.Values("Connection"))
	assert.Empty(t, rs.Header.Values("Keep-Alive"))
	assert.Equal(t, "text/plain", rs.Header.Get("Content-Type"))

	body, err := io.ReadAll(rs.Body)
	require.NoError(t, err)
	assert.Equal(t, "Successful request", string(body))
}

func TestRemovesRepeatedAndMixedCaseHeaders(t *testing.T) {
	p := New(Params{
		Target:            testTarget(t),
		AccessLogDisabled: true,
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			h := http.Header{
				"Connection":        {"keep-alive", "Upgrade"},
				"TRANSFER-ENCODING": {"chunked"},
				"Upgrade":           {"h2c"},
				"X-Custom":          {"value"},
			}
			return backendResponse(http.StatusOK, h, ""), nil
		}),
	})

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "http://proxy.test/", nil))

	rs := w.Result()
	assert.Empty(t, rs.Header.Values("Connection"))
	assert.Empty(t, rs.Header.Values("Transfer-Encoding"))
	assert.Empty(t, rs.Header.Values("Upgrade"))
	assert.Equal(t, []string{"value"}, rs.Header.Values("X-Custom"))
}

func TestRequestHeadersForwardedUnmodified(t *testing.T) {
	var backendReq *http.Request
	p := New(Params{
		Target:            testTarget(t),
		AccessLogDisabled: true,
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			backendReq = r
			return backendResponse(http.StatusOK, http.Header{}, ""), nil
		}),
	})

	r := httptest.NewRequest("GET", "http://proxy.test/path", nil)
	r.Header.Set("Connection", "keep-alive")
	r.Header.Set("Upgrade", "h2c")
	r.Header.Set("X-Custom", "value")

	p.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, backendReq)
	assert.Equal(t, "keep-alive", backendReq.Header.Get("Connection"))
	assert.Equal(t, "h2c", backendReq.Header.Get("Upgrade"))
	assert.Equal(t, "value", backendReq.Header.Get("X-Custom"))
}

func TestPreserveHost(t *testing.T) {
	for _, preserve := range []bool{false, true} {
		var backendReq *http.Request
		p := New(Params{
			Target:            testTarget(t),
			PreserveHost:      preserve,
			AccessLogDisabled: true,
			Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
				backendReq = r
				return backendResponse(http.StatusOK, http.Header{}, ""), nil
			}),
		})

		r := httptest.NewRequest("GET", "http://proxy.test/", nil)
		r.Host = "www.example.org"
		p.ServeHTTP(httptest.NewRecorder(), r)

		require.NotNil(t, backendReq)
		if preserve {
			assert.Equal(t, "www.example.org", backendReq.Host)
		} else {
			assert.Equal(t, "backend.test", backendReq.Host)
		}
	}
}

func TestCustomSanitizer(t *testing.T) {
	p := New(Params{
		Target:            testTarget(t),
		Sanitizer:         sanitize.New([]string{"x-internal"}),
		AccessLogDisabled: true,
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			h := http.Header{
				"X-Internal": {"backend-7"},
				"Connection": {"keep-alive"},
			}
			return backendResponse(http.StatusOK, h, ""), nil
		}),
	})

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "http://proxy.test/", nil))

	rs := w.Result()
	assert.Empty(t, rs.Header.Values("X-Internal"))
	assert.Equal(t, "keep-alive", rs.Header.Get("Connection"))
}

func TestResponseFilters(t *testing.T) {
	drop, err := builtin.NewDropResponseHeader().CreateFilter([]interface{}{"X-Powered-By"})
	require.NoError(t, err)

	p := New(Params{
		Target:            testTarget(t),
		AccessLogDisabled: true,
		ResponseFilters:   []filters.Filter{drop},
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			h := http.Header{
				"X-Powered-By": {"demo"},
				"Connection":   {"keep-alive"},
			}
			return backendResponse(http.StatusOK, h, ""), nil
		}),
	})

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "http://proxy.test/", nil))

	rs := w.Result()
	assert.Empty(t, rs.Header.Values("X-Powered-By"))
	assert.Empty(t, rs.Header.Values("Connection"))
}

func TestBackendFailureAnswers502(t *testing.T) {
	p := New(Params{
		Target:            testTarget(t),
		AccessLogDisabled: true,
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		}),
	})

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest("GET", "http://proxy.test/", nil))

	assert.Equal(t, http.StatusBadGateway, w.Result().StatusCode)
}

func TestProxyEndToEnd(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "value")
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "Successful request to the backend")
	}))
	defer backend.Close()

	u, err := url.Parse(backend.URL)
	require.NoError(t, err)

	ps := httptest.NewServer(New(Params{Target: u, AccessLogDisabled: true}))
	defer ps.Close()

	rs, err := http.Get(ps.URL)
	require.NoError(t, err)
	defer rs.Body.Close()

	assert.Equal(t, http.StatusOK, rs.StatusCode)
	assert.Equal(t, "value", rs.Header.Get("X-Custom"))

	body, err := io.ReadAll(rs.Body)
	require.NoError(t, err)
	assert.Equal(t, "Successful request to the backend", string(body))
}

func TestMissingTargetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("failed to panic")
		}
	}()

	New(Params{})
}
