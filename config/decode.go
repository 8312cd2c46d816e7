package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/stripe/apm/ext"
)

// IntegrationConfig holds the settings of one instrumented
// integration.
type IntegrationConfig struct {
	// Enabled turns instrumentation of the integration on or off.
	Enabled bool `yaml:"enabled"`
	// DistributedTracing controls whether trace headers are
	// injected into outgoing calls.
	DistributedTracing bool `yaml:"distributed_tracing" split_words:"true"`
	// ServiceName is the service of the integration's spans.
	ServiceName string `yaml:"service_name" split_words:"true"`
	// ErrorRange lists the statuses that mark a span errored.
	ErrorRange ext.ErrorRange `yaml:"error_range" split_words:"true"`
}

// DefaultIntegrationConfig returns the settings an integration has
// when nothing is configured for it.
func DefaultIntegrationConfig(name string) IntegrationConfig {
	return IntegrationConfig{
		Enabled:            true,
		DistributedTracing: true,
		ServiceName:        name,
		ErrorRange:         ext.HTTPErrorRange,
	}
}

type stringUnmarshaler interface {
	Decode(value string) error
}

var stringUnmarshalerType = reflect.TypeOf((*stringUnmarshaler)(nil)).Elem()

// DecodeIntegration unpacks the raw settings of the named integration
// (as found under Config.Integrations) on top of defaults, then applies
// environment overrides prefixed with APM_<NAME>.
func DecodeIntegration(name string, raw interface{}, defaults IntegrationConfig) (IntegrationConfig, error) {
	out := defaults
	if err := decodeConfig(envName(name), raw, &out); err != nil {
		return defaults, errors.Wrapf(err, "decoding settings of integration %q", name)
	}
	return out, nil
}

// decodeConfig wraps the mapstructure decoder to unpack a map into a
// struct and the envconfig decoder to read environment variables.
func decodeConfig(prefix string, input interface{}, output interface{}) error {
	if input != nil {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringUnmarshalerDecode,
			),
			Result:  output,
			TagName: "yaml",
		})
		if err != nil {
			return err
		}
		if err := decoder.Decode(input); err != nil {
			return err
		}
	}
	return envconfig.Process(prefix, output)
}

// stringUnmarshalerDecode is a mapstructure decode hook for fields
// that parse themselves from a string.
func stringUnmarshalerDecode(
	inputType reflect.Type, outputType reflect.Type, data interface{},
) (interface{}, error) {
	if !reflect.PtrTo(outputType).Implements(stringUnmarshalerType) {
		return data, nil
	}
	var value string
	switch v := data.(type) {
	case string:
		value = v
	case int, int64, uint, uint64:
		value = fmt.Sprint(v)
	default:
		return nil, fmt.Errorf("invalid type %v", inputType)
	}
	parsedValue, ok := reflect.New(outputType).Interface().(stringUnmarshaler)
	if !ok {
		return nil, fmt.Errorf("invalid output type %v", outputType)
	}
	if err := parsedValue.Decode(value); err != nil {
		return nil, err
	}
	return parsedValue, nil
}

func envName(integration string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, integration)
	return EnvPrefix + "_" + name
}
