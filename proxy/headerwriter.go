package proxy

import (
	"net/http"

	"github.com/zalando/hopstrip/sanitize"
)

var _ http.ResponseWriter = &HeaderWriter{}

// HeaderWriter is an http.ResponseWriter wrapper that applies a
// sanitizer to the response headers right before they are written,
// on the explicit or the implicit WriteHeader call. It is the
// integration point for handler chains that do not go through the
// proxy's own response path.
type HeaderWriter struct {
	rw          http.ResponseWriter
	sanitizer   *sanitize.Sanitizer
	wroteHeader bool
}

// NewHeaderWriter wraps rw. When s is nil, sanitize.Default() is used.
func NewHeaderWriter(rw http.ResponseWriter, s *sanitize.Sanitizer) *HeaderWriter {
	if s == nil {
		s = sanitize.Default()
	}

	return &HeaderWriter{rw: rw, sanitizer: s}
}

// Header wraps the Header method of the ResponseWriter.
func (w *HeaderWriter) Header() http.Header {
	return w.rw.Header()
}

// WriteHeader sanitizes the collected headers and writes the status
// code.
func (w *HeaderWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.wroteHeader = true
	w.sanitizer.Sanitize(w.rw.Header())
	w.rw.WriteHeader(code)
}

// Write wraps the Write method of the ResponseWriter, triggering the
// implicit WriteHeader call when needed.
func (w *HeaderWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	return w.rw.Write(p)
}

// Flush flushes the underlying writer when it supports it.
func (w *HeaderWriter) Flush() {
	if f, ok := w.rw.(http.Flusher); ok {
		f.Flush()
	}
}

// Sanitize wraps a handler so that every response it produces has the
// connection-specific headers removed.
func Sanitize(h http.Handler, s *sanitize.Sanitizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(NewHeaderWriter(w, s), r)
	})
}
