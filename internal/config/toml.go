package config

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// TOMLConfigParser parses TOML configuration files. Each Config section
// is a TOML table; unknown keys are rejected.
type TOMLConfigParser struct{}

// NewTOMLConfigParser creates a new TOMLConfigParser.
func NewTOMLConfigParser() *TOMLConfigParser {
	return &TOMLConfigParser{}
}

// Parse parses a TOML configuration from content bytes.
func (p *TOMLConfigParser) Parse(content []byte) (*Config, error) {
	var raw rawConfig
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML configuration: %w", err)
	}
	return raw.config()
}
