package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zheng/tsel/internal/impact"
)

// FileNames are the config files looked up in the project root, in order
var FileNames = []string{".tsel.yaml", ".tsel.yml"}

// EnvPrefix prefixes environment overrides, e.g. TSEL_STRICTDIFF=true
const EnvPrefix = "TSEL"

// Config is the tsel configuration
type Config struct {
	// Extensions limits which changed files are mapped to functions
	Extensions []string `json:"extensions" mapstructure:"extensions"`
	// TestPrefixes and SuiteSuffixes drive the naming classifier
	TestPrefixes  []string `json:"testPrefixes" mapstructure:"testPrefixes"`
	SuiteSuffixes []string `json:"suiteSuffixes" mapstructure:"suiteSuffixes"`
	// Roots are extra source roots analyzed alongside the project
	Roots []string `json:"roots" mapstructure:"roots"`
	// DB is the graph store path
	DB string `json:"db" mapstructure:"db"`
	// Base is diffed against when --base is unset and no diff is piped in.
	// "@upstream" means the remote tracking branch.
	Base                string        `json:"base" mapstructure:"base"`
	StrictDiff          bool          `json:"strictDiff" mapstructure:"strictDiff"`
	IncludeChangedTests bool          `json:"includeChangedTests" mapstructure:"includeChangedTests"`
	Logging             LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Extensions:    []string{".go"},
		TestPrefixes:  append([]string(nil), impact.DefaultTestPrefixes...),
		SuiteSuffixes: append([]string(nil), impact.DefaultSuiteSuffixes...),
		Roots:         []string{},
		DB:            ".tsel.db",
		Base:          "HEAD",
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads the config file in projectRoot, if any, applies TSEL_*
// environment overrides and fills the rest from DefaultConfig.
func Load(projectRoot string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("extensions", def.Extensions)
	v.SetDefault("testPrefixes", def.TestPrefixes)
	v.SetDefault("suiteSuffixes", def.SuiteSuffixes)
	v.SetDefault("roots", def.Roots)
	v.SetDefault("db", def.DB)
	v.SetDefault("base", def.Base)
	v.SetDefault("strictDiff", def.StrictDiff)
	v.SetDefault("includeChangedTests", def.IncludeChangedTests)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := findConfigFile(projectRoot); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFile returns the path of the config file Load would read, or ""
func ConfigFile(projectRoot string) string {
	return findConfigFile(projectRoot)
}

func findConfigFile(projectRoot string) string {
	for _, name := range FileNames {
		path := filepath.Join(projectRoot, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{Field: "extensions", Message: fmt.Sprintf("%q must start with a dot", ext)}
		}
	}
	for _, p := range c.TestPrefixes {
		if p == "" {
			return &ConfigError{Field: "testPrefixes", Message: "empty prefix matches every function"}
		}
	}
	for _, s := range c.SuiteSuffixes {
		if s == "" {
			return &ConfigError{Field: "suiteSuffixes", Message: "empty suffix matches every method"}
		}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
