package hopstrip

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zalando/hopstrip/filters"
	"github.com/zalando/hopstrip/filters/builtin"
	"github.com/zalando/hopstrip/logging"
	"github.com/zalando/hopstrip/metrics"
	"github.com/zalando/hopstrip/proxy"
	"github.com/zalando/hopstrip/sanitize"
)

// FilterDefinition names a filter spec from the registry together with
// its config parameters.
type FilterDefinition struct {
	Name string
	Args []interface{}
}

// Options to start hopstrip.
type Options struct {

	// Network address that the proxy should listen on.
	Address string

	// URL of the backend application that requests are forwarded
	// to.
	TargetURL string

	// When set, the incoming request 'Host' header is preserved in
	// the outgoing requests.
	PreserveHost bool

	// Denylist of response header names to remove. When nil, the
	// connection-specific set (sanitize.DefaultDenylist) is used.
	Denylist []string

	// CustomFilters are registered in addition to the builtin
	// filter specs.
	CustomFilters []filters.Spec

	// ResponseFilters are applied to every response after
	// sanitization, resolved by name from the registry.
	ResponseFilters []FilterDefinition

	// Network address used for exposing the /metrics endpoint.
	// An empty value disables metrics.
	SupportListener string

	// When set, the Go runtime and process statistics are
	// reported, too.
	EnableRuntimeMetrics bool

	// Output file for the application log. When empty, /dev/stderr
	// is used.
	ApplicationLogOutput string

	// Application log level, one of the logrus level names.
	ApplicationLogLevel string

	// Prefix for each application log entry.
	ApplicationLogPrefix string

	// Output file for the access log. When empty, /dev/stderr is
	// used.
	AccessLogOutput string

	// When set, no access log is printed.
	AccessLogDisabled bool

	// When set, the access log entries are printed in JSON format.
	AccessLogJSONEnabled bool

	ReadTimeoutServer  time.Duration
	WriteTimeoutServer time.Duration
	IdleTimeoutServer  time.Duration

	// TimeoutBackend limits dialing the backend and waiting for its
	// response headers.
	TimeoutBackend time.Duration
}

func openLogOutput(name string) (io.Writer, error) {
	switch name {
	case "", "/dev/stderr":
		return os.Stderr, nil
	case "/dev/stdout":
		return os.Stdout, nil
	default:
		return os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}
}

func initLog(o Options) error {
	if o.ApplicationLogLevel != "" {
		level, err := log.ParseLevel(o.ApplicationLogLevel)
		if err != nil {
			return err
		}

		log.SetLevel(level)
	}

	appOut, err := openLogOutput(o.ApplicationLogOutput)
	if err != nil {
		return err
	}

	var accessOut io.Writer
	if !o.AccessLogDisabled {
		accessOut, err = openLogOutput(o.AccessLogOutput)
		if err != nil {
			return err
		}
	}

	logging.Init(logging.Options{
		ApplicationLogPrefix: o.ApplicationLogPrefix,
		ApplicationLogOutput: appOut,
		AccessLogOutput:      accessOut,
		AccessLogDisabled:    o.AccessLogDisabled,
		AccessLogJSONEnabled: o.AccessLogJSONEnabled,
	})

	return nil
}

// resolves the configured response filters through the registry
func createResponseFilters(registry filters.Registry, defs []FilterDefinition) ([]filters.Filter, error) {
	var fs []filters.Filter
	for _, def := range defs {
		spec, ok := registry[def.Name]
		if !ok {
			return nil, fmt.Errorf("filter not found: %s", def.Name)
		}

		f, err := spec.CreateFilter(def.Args)
		if err != nil {
			return nil, fmt.Errorf("creating filter %s: %w", def.Name, err)
		}

		fs = append(fs, f)
	}

	return fs, nil
}

// Run hopstrip. It blocks serving the proxy on the configured address
// until the listener fails.
func Run(o Options) error {
	if err := initLog(o); err != nil {
		return err
	}

	target, err := url.Parse(o.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target url: %w", err)
	}

	if target.Scheme == "" || target.Host == "" {
		return fmt.Errorf("invalid target url: %s", o.TargetURL)
	}

	denylist := o.Denylist
	if denylist == nil {
		denylist = sanitize.DefaultDenylist
	}

	registry := builtin.MakeRegistry()
	for _, s := range o.CustomFilters {
		registry.Register(s)
	}

	responseFilters, err := createResponseFilters(registry, o.ResponseFilters)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if o.SupportListener != "" {
		m = metrics.New(metrics.Options{EnableRuntimeMetrics: o.EnableRuntimeMetrics})
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())

		go func() {
			log.Infof("support listener on %s", o.SupportListener)
			if err := http.ListenAndServe(o.SupportListener, mux); err != nil {
				log.Errorf("support listener failed: %v", err)
			}
		}()
	}

	p := proxy.New(proxy.Params{
		Target:            target,
		Sanitizer:         sanitize.New(denylist),
		ResponseFilters:   responseFilters,
		PreserveHost:      o.PreserveHost,
		Metrics:           m,
		AccessLogDisabled: o.AccessLogDisabled,
		BackendTimeout:    o.TimeoutBackend,
	})

	srv := &http.Server{
		Addr:         o.Address,
		Handler:      p,
		ReadTimeout:  o.ReadTimeoutServer,
		WriteTimeout: o.WriteTimeoutServer,
		IdleTimeout:  o.IdleTimeoutServer,
	}

	log.Infof("listening on %s, forwarding to %s", o.Address, target)
	return srv.ListenAndServe()
}
