package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
)

// Parser provides a unified interface for parsing threadpaint configuration
// files. It detects whether content is Lua or TOML.
type Parser struct {
	tomlParser *TOMLConfigParser
	luaParser  *LuaConfigParser
}

// NewParser creates a new Parser that can handle both Lua and TOML.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}

	return &Parser{
		tomlParser: NewTOMLConfigParser(),
		luaParser:  luaParser,
	}, nil
}

// ParseFile reads and parses a configuration file, auto-detecting the format.
// A leading ~ in path is expanded to the home directory.
func (p *Parser) ParseFile(path string) (*Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return p.Parse(content)
}

// Parse parses configuration content, auto-detecting the format.
// Content assigning threadpaint.config is Lua; anything else is TOML.
// Environment references and ~ in string values are expanded.
func (p *Parser) Parse(content []byte) (*Config, error) {
	if isLuaConfig(content) {
		return p.finish(p.luaParser.Parse(content))
	}
	return p.finish(p.tomlParser.Parse(content))
}

// luaConfigPattern matches "threadpaint.config =" at the start of a line.
var luaConfigPattern = regexp.MustCompile(`(?m)^\s*threadpaint\.config\s*=`)

func isLuaConfig(content []byte) bool {
	return luaConfigPattern.Match(content)
}

// ParseFromFS reads and parses a configuration file from a filesystem.
func (p *Parser) ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}

	return p.Parse(content)
}

// ParseReader parses configuration from an io.Reader.
// The format parameter must be "lua" or "toml".
func (p *Parser) ParseReader(r io.Reader, format string) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch format {
	case "lua":
		return p.finish(p.luaParser.Parse(content))
	case "toml":
		return p.finish(p.tomlParser.Parse(content))
	default:
		return nil, fmt.Errorf("unknown format: %s (expected 'lua' or 'toml')", format)
	}
}

func (p *Parser) finish(cfg *Config, err error) (*Config, error) {
	if err != nil {
		return nil, err
	}
	ExpandEnvConfig(cfg)
	if err := ExpandPaths(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close releases resources associated with the parser.
func (p *Parser) Close() error {
	if p.luaParser != nil {
		return p.luaParser.Close()
	}
	return nil
}
