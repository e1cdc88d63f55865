package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the index writer.
const (
	FormatPB      = "pb"
	FormatJSON    = "json"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
)

type Config struct {
	Project struct {
		Root    string   `yaml:"root" toml:"root"`
		Include []string `yaml:"include" toml:"include"`
		Exclude []string `yaml:"exclude" toml:"exclude"`
	} `yaml:"project" toml:"project"`
	Output struct {
		Dir     string   `yaml:"dir" toml:"dir"`
		Formats []string `yaml:"formats" toml:"formats"`
	} `yaml:"output" toml:"output"`
	Build struct {
		AbortOnError  bool `yaml:"abort_on_error" toml:"abort_on_error"`
		SkipUnchanged bool `yaml:"skip_unchanged" toml:"skip_unchanged"`
	} `yaml:"build" toml:"build"`
	Storage struct {
		DB string `yaml:"db" toml:"db"`
	} `yaml:"storage" toml:"storage"`
	Metrics struct {
		Textfile string `yaml:"textfile" toml:"textfile"`
	} `yaml:"metrics" toml:"metrics"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Project.Include = []string{"**/*.go"}
	cfg.Project.Exclude = []string{"**/*_test.go", "vendor/**", "**/testdata/**"}
	cfg.Output.Dir = "featgraph-out"
	cfg.Output.Formats = []string{FormatPB}
	cfg.Build.SkipUnchanged = true
	cfg.Storage.DB = ".featgraph/featgraph.db"
	cfg.LogLevel = "info"
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an
// error. YAML and TOML are chosen by extension.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load the config file
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(path, file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if dir := os.Getenv("FEATGRAPH_OUTPUT_DIR"); dir != "" {
		cfg.Output.Dir = dir
	}
	if v := os.Getenv("FEATGRAPH_ABORT_ON_ERROR"); v != "" {
		abort, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FEATGRAPH_ABORT_ON_ERROR: %w", err)
		}
		cfg.Build.AbortOnError = abort
	}
	if db := os.Getenv("FEATGRAPH_DB"); db != "" {
		cfg.Storage.DB = db
	}
	if level := os.Getenv("FEATGRAPH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// Validate rejects unknown output formats and log levels.
func (c *Config) Validate() error {
	for _, f := range c.Output.Formats {
		switch f {
		case FormatPB, FormatJSON, FormatDOT, FormatMermaid:
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
