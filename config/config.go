// Package config loads the optional nojs.yaml or nojs.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// DefaultPattern matches template files.
const DefaultPattern = "*.nojs.html"

// Output formats of the check tool.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// FileNames are probed in order by LoadOptional.
var FileNames = []string{"nojs.yaml", "nojs.yml", "nojs.toml"}

// Config is the project configuration.
type Config struct {
	Templates TemplatesConfig `yaml:"templates" toml:"templates"`
	Compiler  CompilerConfig  `yaml:"compiler" toml:"compiler"`
	Runtime   RuntimeConfig   `yaml:"runtime" toml:"runtime"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
}

// TemplatesConfig says where templates live.
type TemplatesConfig struct {
	// Pattern is a filepath.Match pattern applied to file names.
	Pattern string `yaml:"pattern,omitempty" toml:"pattern"`
	// Root is the directory searched, relative to the config file.
	Root string `yaml:"root,omitempty" toml:"root"`
}

type CompilerConfig struct {
	// DevMode rejects elements with more than one template controller.
	DevMode bool `yaml:"dev_mode,omitempty" toml:"dev_mode"`
}

type RuntimeConfig struct {
	// ViewCacheSize is the default cache size of template controller views.
	ViewCacheSize int `yaml:"view_cache_size,omitempty" toml:"view_cache_size"`
}

type OutputConfig struct {
	Format string `yaml:"format,omitempty" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.Templates.Pattern = strings.TrimSpace(c.Templates.Pattern)
	if c.Templates.Pattern == "" {
		c.Templates.Pattern = DefaultPattern
	}
	c.Templates.Root = strings.TrimSpace(c.Templates.Root)
	if c.Templates.Root == "" {
		c.Templates.Root = "."
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = FormatText
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := filepath.Match(c.Templates.Pattern, ""); err != nil {
		return fmt.Errorf("templates.pattern %q: %w", c.Templates.Pattern, err)
	}
	if c.Runtime.ViewCacheSize < 0 {
		return fmt.Errorf("runtime.view_cache_size must not be negative, got %d", c.Runtime.ViewCacheSize)
	}
	switch c.Output.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatText, FormatYAML, c.Output.Format)
	}
	return nil
}

// Load reads the file at path, choosing the decoder by extension. Defaults are applied
// and the result is validated. A relative templates.root is resolved against the
// file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.applyDefaults()
	if !filepath.IsAbs(cfg.Templates.Root) {
		cfg.Templates.Root = filepath.Join(filepath.Dir(path), cfg.Templates.Root)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// LoadOptional loads the first of FileNames present in dir, or the defaults rooted at
// dir when there is none.
func LoadOptional(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		return Load(path)
	}
	cfg := Default()
	cfg.Templates.Root = dir
	return cfg, nil
}

// ModulePath reads the module path from the go.mod in dir.
func ModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

// FindModuleRoot walks up from dir to the directory holding go.mod.
func FindModuleRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}
