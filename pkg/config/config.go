// Package config loads the two configuration surfaces of a mosf
// application: a read-only TOML file shipped with the app resources,
// and a writable JSON settings file in the user's data directory.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/go-mosf/mosf/pkg/errors"
)

// Framework identifiers a config.toml may select.
const (
	FrameworkToga = "toga"
	FrameworkKivy = "kivy"
)

// Config is the read-only application configuration. The framework
// table with a name entry is mandatory; everything else is free-form
// and reachable through the dotted Lookup accessors.
type Config struct {
	raw       map[string]any
	framework string
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	raw := make(map[string]any)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrap("config.Load", errors.KindConfig, err)
	}
	return fromRaw(raw)
}

// Parse reads and validates TOML configuration text.
func Parse(data string) (*Config, error) {
	raw := make(map[string]any)
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, errors.Wrap("config.Parse", errors.KindConfig, err)
	}
	return fromRaw(raw)
}

func fromRaw(raw map[string]any) (*Config, error) {
	c := &Config{raw: raw}
	fw, ok := raw["framework"].(map[string]any)
	if !ok {
		return nil, errors.New("config.Load", errors.KindConfig,
			"the 'framework' table is not defined in the configuration")
	}
	name, ok := fw["name"].(string)
	if !ok || name == "" {
		return nil, errors.New("config.Load", errors.KindConfig,
			"the 'name' entry is not defined in the 'framework' table")
	}
	c.framework = strings.ToLower(name)
	return c, nil
}

// Framework returns the configured backend identifier, lowercased.
// Whether a backend of that name exists is the registry's business,
// not the configuration's.
func (c *Config) Framework() string { return c.framework }

// Lookup resolves a dotted path ("framework.name", "window.title")
// through nested tables.
func (c *Config) Lookup(path string) (any, bool) {
	var cur any = c.raw
	for _, part := range strings.Split(path, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at a dotted path, or def.
func (c *Config) String(path, def string) string {
	if v, ok := c.Lookup(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the boolean at a dotted path, or def.
func (c *Config) Bool(path string, def bool) bool {
	if v, ok := c.Lookup(path); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the integer at a dotted path, or def.
func (c *Config) Int(path string, def int64) int64 {
	if v, ok := c.Lookup(path); ok {
		switch n := v.(type) {
		case int64:
			return n
		case int:
			return int64(n)
		}
	}
	return def
}
