// Package config loads compiler settings from defaults, rustscript.yaml,
// RUSTSCRIPT_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "RUSTSCRIPT_"

	DefaultEntryPoint = "main"
	DefaultIndent     = "    "
	DefaultOutput     = "target/index.js"
	DefaultLogLevel   = "warn"
)

// FileNames are searched in this order when no config file is given.
var FileNames = []string{"rustscript.yaml", "rustscript.yml"}

type Config struct {
	EntryPoint string `koanf:"entry_point"`
	Indent     string `koanf:"indent"`
	Output     string `koanf:"output"`
	Strict     bool   `koanf:"strict"`
	Verbose    bool   `koanf:"verbose"`
	LogLevel   string `koanf:"log_level"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// RegisterFlags defines the flags that Load understands on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: rustscript.yaml in the working directory)")
	fs.String("entry", DefaultEntryPoint, "name of the entry-point function")
	fs.String("indent", DefaultIndent, "indentation unit of the generated code")
	fs.Bool("strict", false, "treat type diagnostics as errors")
	fs.BoolP("verbose", "v", false, "log debug output")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"entry":     "entry_point",
	"log-level": "log_level",
}

func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds a Config. cfgFile may be empty, in which case the working
// directory is searched. flags may be nil; only flags that were set override
// the other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return LoadFrom(dir, cfgFile, flags)
}

// LoadFrom is Load with an explicit directory to search for config files.
func LoadFrom(dir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"entry_point": DefaultEntryPoint,
		"indent":      DefaultIndent,
		"output":      DefaultOutput,
		"strict":      false,
		"verbose":     false,
		"log_level":   DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile, dir)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// RUSTSCRIPT_ENTRY_POINT -> entry_point
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" || f.Name == "help" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Level is the slog level to log at. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	return level, nil
}
