package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

// file is the on-disk layout shared by the YAML and TOML formats.
type file struct {
	Systems []types.OSOption `yaml:"systems" toml:"systems"`
}

// LoadFile reads a catalog from a .yaml/.yml or .toml file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes catalog data; ext selects the format.
func Parse(ext string, data []byte) (*Catalog, error) {
	var f file
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse yaml catalog: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse toml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	return New(f.Systems)
}
