package query

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromPath reads a query configuration file (YAML or JSON) and returns the parsed Config.
// Format is detected by extension (.yaml/.yml → YAML, .json → JSON) or by content (first non-whitespace char).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses a configuration from bytes. ext is the file extension (e.g. ".json", ".yaml") for format hint; empty = detect from content.
// The result is validated; blocks without an ID get one.
func Load(data []byte, ext string) (*Config, error) {
	var c Config
	switch format(data, ext) {
	case "json":
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse query config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse query config yaml: %w", err)
		}
	}
	for i := range c.Blocks {
		if c.Blocks[i].ID == "" {
			c.Blocks[i].ID = NewBlock("").ID
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func format(data []byte, ext string) string {
	switch strings.ToLower(ext) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return "json"
	}
	return "yaml"
}

// Marshal encodes c as "json" (indented) or "yaml".
func Marshal(c *Config, as string) ([]byte, error) {
	switch strings.ToLower(as) {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode query config json: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml", "":
		data, err := yaml.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode query config yaml: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown config format %q", as)
}

// SaveToPath writes c to path, choosing the format from the extension.
func SaveToPath(path string, c *Config) error {
	as := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		as = "json"
	}
	data, err := Marshal(c, as)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write query config: %w", err)
	}
	return nil
}
