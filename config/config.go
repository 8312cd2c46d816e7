// Package config reads the process configuration and keeps the
// per-integration settings that instrumented integrations consult on
// every call.
package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes the environment variables that override the
// config file, e.g. APM_COLLECTOR_ADDRESS.
const EnvPrefix = "apm"

const (
	DefaultCollectorAddress = "udp://127.0.0.1:8128"
	DefaultCapacity         = 1024
	DefaultFlushInterval    = "1s"
)

// Config is the process-level configuration.
type Config struct {
	Service          string       `yaml:"service"`
	CollectorAddress string       `yaml:"collector_address" split_words:"true"`
	Capacity         uint         `yaml:"capacity"`
	Buffered         bool         `yaml:"buffered"`
	FlushInterval    string       `yaml:"flush_interval" split_words:"true"`
	Debug            bool         `yaml:"debug"`
	SentryDsn        StringSecret `yaml:"sentry_dsn" split_words:"true"`

	// Integrations maps integration names to their raw settings; see
	// DecodeIntegration.
	Integrations map[string]interface{} `yaml:"integrations" ignored:"true"`
}

// Read unmarshals the config file at path and applies environment
// overrides.
func Read(path string) (c Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()
	return readConfig(f)
}

// ReadEnvironment builds a config from the environment and defaults
// alone, for processes run without a config file.
func ReadEnvironment() (Config, error) {
	return readConfig(bytes.NewReader(nil))
}

func readConfig(r io.Reader) (c Config, err error) {
	bts, err := io.ReadAll(r)
	if err != nil {
		return
	}
	err = yaml.UnmarshalStrict(bts, &c)
	if err != nil {
		return c, errors.Wrap(err, "parsing config")
	}

	err = envconfig.Process(EnvPrefix, &c)
	if err != nil {
		return c, errors.Wrap(err, "processing environment")
	}

	if c.CollectorAddress == "" {
		c.CollectorAddress = DefaultCollectorAddress
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.FlushInterval == "" {
		c.FlushInterval = DefaultFlushInterval
	}
	return c, nil
}

// ParseFlushInterval handles parsing the flush interval as a
// time.Duration.
func (c Config) ParseFlushInterval() (time.Duration, error) {
	return time.ParseDuration(c.FlushInterval)
}
