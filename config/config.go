// Package config implements the command line and yaml configuration
// surface of the hopstrip executable.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/zalando/hopstrip"
)

const (
	defaultAddress         = ":9090"
	defaultSupportListener = ":9911"
	defaultAppLogLevel     = "INFO"
	defaultAppLogPrefix    = "[APP]"

	defaultReadTimeoutServer  = 5 * time.Minute
	defaultWriteTimeoutServer = 60 * time.Second
	defaultIdleTimeoutServer  = 60 * time.Second
	defaultTimeoutBackend     = 60 * time.Second

	configFileUsage        = "if provided the flags are loaded/overwritten by the values on the file (yaml)"
	addressUsage           = "network address that hopstrip should listen on"
	targetURLUsage         = "URL of the backend application that requests are forwarded to"
	preserveHostUsage      = "flag indicating to preserve the incoming request 'Host' header in the outgoing requests"
	denylistUsage          = "comma separated list of response header names to remove; defaults to the connection-specific set"
	supportListenerUsage   = "network address used for exposing the /metrics endpoint. An empty value disables it"
	runtimeMetricsUsage    = "enables reporting of the Go runtime and process statistics"
	applicationLogUsage    = "output file for the application log. When not set, /dev/stderr is used"
	appLogLevelUsage       = "log level for application logs, possible values: PANIC, FATAL, ERROR, WARN, INFO, DEBUG"
	appLogPrefixUsage      = "prefix for each application log entry"
	accessLogUsage         = "output file for the access log. When not set, /dev/stderr is used"
	accessLogDisabledUsage = "when this flag is set, no access log is printed"
	accessLogJSONUsage     = "when this flag is set, the access log entries are printed in JSON format"
	readTimeoutUsage       = "set ReadTimeout for http server connections"
	writeTimeoutUsage      = "set WriteTimeout for http server connections"
	idleTimeoutUsage       = "set IdleTimeout for http server connections"
	timeoutBackendUsage    = "sets the TCP client connection and response header timeout for backend connections"
	versionUsage           = "print hopstrip version"
)

type Config struct {
	ConfigFile string
	Flags      *flag.FlagSet

	Address              string        `yaml:"address"`
	TargetURL            string        `yaml:"target-url"`
	ProxyPreserveHost    bool          `yaml:"proxy-preserve-host"`
	Denylist             *listFlag     `yaml:"denylist"`
	SupportListener      string        `yaml:"support-listener"`
	EnableRuntimeMetrics bool          `yaml:"runtime-metrics"`
	ApplicationLog       string        `yaml:"application-log"`
	ApplicationLogLevel  string        `yaml:"application-log-level"`
	ApplicationLogPrefix string        `yaml:"application-log-prefix"`
	AccessLog            string        `yaml:"access-log"`
	AccessLogDisabled    bool          `yaml:"access-log-disabled"`
	AccessLogJSONEnabled bool          `yaml:"access-log-json-enabled"`
	ReadTimeoutServer    time.Duration `yaml:"read-timeout-server"`
	WriteTimeoutServer   time.Duration `yaml:"write-timeout-server"`
	IdleTimeoutServer    time.Duration `yaml:"idle-timeout-server"`
	TimeoutBackend       time.Duration `yaml:"timeout-backend"`
	PrintVersion         bool          `yaml:"version"`
}

func NewConfig() *Config {
	cfg := new(Config)

	flags := flag.NewFlagSet("", flag.ExitOnError)
	cfg.Flags = flags

	flags.StringVar(&cfg.ConfigFile, "config-file", "", configFileUsage)
	flags.StringVar(&cfg.Address, "address", defaultAddress, addressUsage)
	flags.StringVar(&cfg.TargetURL, "target-url", "", targetURLUsage)
	flags.BoolVar(&cfg.ProxyPreserveHost, "proxy-preserve-host", false, preserveHostUsage)
	cfg.Denylist = commaListFlag()
	flags.Var(cfg.Denylist, "denylist", denylistUsage)
	flags.StringVar(&cfg.SupportListener, "support-listener", defaultSupportListener, supportListenerUsage)
	flags.BoolVar(&cfg.EnableRuntimeMetrics, "runtime-metrics", true, runtimeMetricsUsage)
	flags.StringVar(&cfg.ApplicationLog, "application-log", "", applicationLogUsage)
	flags.StringVar(&cfg.ApplicationLogLevel, "application-log-level", defaultAppLogLevel, appLogLevelUsage)
	flags.StringVar(&cfg.ApplicationLogPrefix, "application-log-prefix", defaultAppLogPrefix, appLogPrefixUsage)
	flags.StringVar(&cfg.AccessLog, "access-log", "", accessLogUsage)
	flags.BoolVar(&cfg.AccessLogDisabled, "access-log-disabled", false, accessLogDisabledUsage)
	flags.BoolVar(&cfg.AccessLogJSONEnabled, "access-log-json-enabled", false, accessLogJSONUsage)
	flags.DurationVar(&cfg.ReadTimeoutServer, "read-timeout-server", defaultReadTimeoutServer, readTimeoutUsage)
	flags.DurationVar(&cfg.WriteTimeoutServer, "write-timeout-server", defaultWriteTimeoutServer, writeTimeoutUsage)
	flags.DurationVar(&cfg.IdleTimeoutServer, "idle-timeout-server", defaultIdleTimeoutServer, idleTimeoutUsage)
	flags.DurationVar(&cfg.TimeoutBackend, "timeout-backend", defaultTimeoutBackend, timeoutBackendUsage)
	flags.BoolVar(&cfg.PrintVersion, "version", false, versionUsage)

	return cfg
}

// Parse the command line arguments and, when given, the config file.
// Flags win over the values from the file.
func (c *Config) Parse() error {
	return c.ParseArgs(os.Args[1:])
}

func (c *Config) ParseArgs(args []string) error {
	if err := c.Flags.Parse(args); err != nil {
		return err
	}

	if c.ConfigFile != "" {
		yamlFile, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, c); err != nil {
			return fmt.Errorf("invalid config file format: %w", err)
		}

		// reparse the flags so that they win over the file
		if err := c.Flags.Parse(args); err != nil {
			return err
		}
	}

	return c.validate()
}

func (c *Config) validate() error {
	if c.PrintVersion {
		return nil
	}

	if c.TargetURL == "" {
		return errors.New("missing target url")
	}

	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid target url: %s", c.TargetURL)
	}

	return nil
}

func (c *Config) ToOptions() hopstrip.Options {
	var denylist []string
	if c.Denylist.String() != "" {
		denylist = c.Denylist.values
	}

	return hopstrip.Options{
		Address:              c.Address,
		TargetURL:            c.TargetURL,
		PreserveHost:         c.ProxyPreserveHost,
		Denylist:             denylist,
		SupportListener:      c.SupportListener,
		EnableRuntimeMetrics: c.EnableRuntimeMetrics,
		ApplicationLogOutput: c.ApplicationLog,
		ApplicationLogLevel:  c.ApplicationLogLevel,
		ApplicationLogPrefix: c.ApplicationLogPrefix,
		AccessLogOutput:      c.AccessLog,
		AccessLogDisabled:    c.AccessLogDisabled,
		AccessLogJSONEnabled: c.AccessLogJSONEnabled,
		ReadTimeoutServer:    c.ReadTimeoutServer,
		WriteTimeoutServer:   c.WriteTimeoutServer,
		IdleTimeoutServer:    c.IdleTimeoutServer,
		TimeoutBackend:       c.TimeoutBackend,
	}
}
