package logging

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testRequest() *http.Request {
	r, _ := http.NewRequest("GET", "http://example.org/path", nil)
	r.RequestURI = "/path"
	r.RemoteAddr = "192.168.3.3:54321"
	r.Proto = "HTTP/1.1"
	return r
}

func TestAccessLogFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	LogAccess(&AccessEntry{
		Request:        testRequest(),
		StatusCode:     200,
		ResponseSize:   42,
		Duration:       3 * time.Millisecond,
		RequestTime:    time.Date(2024, 5, 2, 15, 4, 5, 0, time.UTC),
		RemovedHeaders: 2,
	})

	got := buf.String()
	if !strings.Contains(got, `"GET /path HTTP/1.1" 200 42 3 2`) {
		t.Error("unexpected access log entry:", got)
	}

	if !strings.HasPrefix(got, "192.168.3.3 - - ") {
		t.Error("missing remote host:", got)
	}
}

func TestAccessLogForwardedFor(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf})

	r := testRequest()
	r.Header.Set("X-Forwarded-For", "10.0.0.7")
	LogAccess(&AccessEntry{Request: r, RequestTime: time.Now()})

	if !strings.HasPrefix(buf.String(), "10.0.0.7 ") {
		t.Error("expected the forwarded address, got:", buf.String())
	}
}

func TestAccessLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf, AccessLogDisabled: true})

	LogAccess(&AccessEntry{Request: testRequest(), RequestTime: time.Now()})

	if buf.Len() != 0 {
		t.Error("expected no access log output, got:", buf.String())
	}
}

func TestAccessLogJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{AccessLogOutput: &buf, AccessLogJSONEnabled: true})

	LogAccess(&AccessEntry{Request: testRequest(), StatusCode: 200, RequestTime: time.Now()})

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Error("unexpected json access log entry:", buf.String())
	}
}

func TestApplicationLogPrefix(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		ApplicationLogPrefix: "[APP]",
		ApplicationLogOutput: &buf,
		AccessLogDisabled:    true,
	})
	defer func() {
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetOutput(os.Stderr)
	}()

	logrus.Info("Hello, world!")

	if !strings.HasPrefix(buf.String(), "[APP]") {
		t.Error("missing prefix:", buf.String())
	}
}
