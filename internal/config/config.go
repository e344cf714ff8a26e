// Package config loads formkeeper settings: defaults, then an optional YAML
// file, then FORMKEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/thesavant42/formkeeper/internal/api"
	"github.com/thesavant42/formkeeper/internal/dom"
)

// DefaultPath is the config file read when no path is given
const DefaultPath = "formkeeper.yaml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "FORMKEEPER_"

// Config holds every tunable of the formkeeper binaries
type Config struct {
	ExcludeHidden bool          `yaml:"exclude_hidden"`
	DBPath        string        `yaml:"db_path"`
	FramePolicy   string        `yaml:"frame_policy"`
	MaxFrameDepth int           `yaml:"max_frame_depth"`
	UserAgent     string        `yaml:"user_agent"`
	Timeout       time.Duration `yaml:"timeout"`
	LogLevel      string        `yaml:"log_level"`
	RunScripts    bool          `yaml:"run_scripts"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ExcludeHidden: true,
		DBPath:        "formkeeper.db",
		FramePolicy:   string(api.PolicySameOrigin),
		MaxFrameDepth: dom.DefaultMaxFrameDepth,
		Timeout:       30 * time.Second,
		LogLevel:      "info",
	}
}

// Load builds the configuration. A missing file is not an error; a file that
// exists but does not parse is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if _, err := api.ParseFramePolicy(c.FramePolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MaxFrameDepth < 0 {
		return fmt.Errorf("config: max_frame_depth must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Policy returns the parsed frame policy
func (c *Config) Policy() api.FramePolicy {
	policy, err := api.ParseFramePolicy(c.FramePolicy)
	if err != nil {
		return api.PolicySameOrigin
	}
	return policy
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("EXCLUDE_HIDDEN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sEXCLUDE_HIDDEN: %w", EnvPrefix, err)
		}
		c.ExcludeHidden = b
	}
	if v, ok := get("DB_PATH"); ok {
		c.DBPath = v
	}
	if v, ok := get("FRAME_POLICY"); ok {
		c.FramePolicy = v
	}
	if v, ok := get("MAX_FRAME_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_FRAME_DEPTH: %w", EnvPrefix, err)
		}
		c.MaxFrameDepth = n
	}
	if v, ok := get("USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("RUN_SCRIPTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sRUN_SCRIPTS: %w", EnvPrefix, err)
		}
		c.RunScripts = b
	}
	return nil
}
