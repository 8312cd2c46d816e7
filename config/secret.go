package config

// PrintSecrets disables redacting secrets when a config is printed.
var PrintSecrets = false

const Redacted = "REDACTED"

// StringSecret holds a config value, such as a DSN with credentials,
// that must not show up in logs.
type StringSecret struct {
	Value string
}

func (s StringSecret) String() string {
	if PrintSecrets {
		return s.Value
	}
	if s.Value == "" {
		return ""
	}
	return Redacted
}

func (s *StringSecret) UnmarshalYAML(unmarshal func(interface{}) error) error {
	return unmarshal(&s.Value)
}

// Decode lets envconfig and DecodeIntegration fill the secret from a
// plain string.
func (s *StringSecret) Decode(value string) error {
	s.Value = value
	return nil
}
