package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Figliar/extension-plus-API/logging"
	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/lowering"
)

// Config represents the application configuration
type Config struct {
	Translate TranslateConfig `json:"translate" yaml:"translate"`
	Layout    LayoutConfig    `json:"layout" yaml:"layout"`
	Lookup    LookupConfig    `json:"lookup" yaml:"lookup"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	REPL      REPLConfig      `json:"repl" yaml:"repl"`
	Batch     BatchConfig     `json:"batch" yaml:"batch"`
}

// TranslateConfig contains lowering switches
type TranslateConfig struct {
	ForwardCalls     bool `json:"forward_calls" yaml:"forward_calls"`
	ImplicitGlobals  bool `json:"implicit_globals" yaml:"implicit_globals"`
	LenientOperators bool `json:"lenient_operators" yaml:"lenient_operators"`
}

// LayoutConfig contains block placement settings
type LayoutConfig struct {
	Margin int `json:"margin" yaml:"margin"`
}

// LookupConfig points at replacement lookup tables
type LookupConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	File   string `json:"file" yaml:"file"`
}

// REPLConfig contains REPL configuration
type REPLConfig struct {
	Prompt      string `json:"prompt" yaml:"prompt"`
	HistorySize int    `json:"history_size" yaml:"history_size"`
	HistoryFile string `json:"history_file" yaml:"history_file"`
	ShowWelcome bool   `json:"show_welcome" yaml:"show_welcome"`
}

// BatchConfig contains batch mode settings
type BatchConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Translate: TranslateConfig{
			ForwardCalls: true,
		},
		Layout: LayoutConfig{
			Margin: lowering.DefaultMargin,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		REPL: REPLConfig{
			Prompt:      "lua> ",
			HistorySize: 1000,
			HistoryFile: "~/.luablocks_history",
			ShowWelcome: true,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	path = expandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %v", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %v", err)
		}
	}

	if config.Batch.Workers < 1 {
		config.Batch.Workers = 1
	}
	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, path string) error {
	path = expandHome(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON config: %v", err)
		}
	default:
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML config: %v", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	return nil
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// NewLogger builds the logger described by the logging section
func (c *Config) NewLogger() (*logging.DefaultLogger, error) {
	lc := logging.LoggerConfig{Formatter: logging.NewFormatter(c.Logging.Format)}
	lc.ApplyLogLevel(c.Logging.Level)
	if c.Logging.File != "" {
		w, err := logging.NewFileWriter(expandHome(c.Logging.File))
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %v", err)
		}
		lc.Writers = []logging.Writer{w}
	}
	return logging.NewDefaultLoggerWithConfig(lc), nil
}

// Tables loads the configured lookup tables, or the built-in ones when no
// path is set
func (c *Config) Tables() (*lookup.Tables, error) {
	if c.Lookup.Path == "" {
		return lookup.Default(), nil
	}
	return lookup.LoadFile(expandHome(c.Lookup.Path))
}

// SessionOptions converts the translate and layout sections to session options
func (c *Config) SessionOptions(logger logging.Logger) []lowering.Option {
	opts := []lowering.Option{
		lowering.WithForwardCalls(c.Translate.ForwardCalls),
		lowering.WithImplicitGlobals(c.Translate.ImplicitGlobals),
		lowering.WithLenientOperators(c.Translate.LenientOperators),
		lowering.WithMargin(c.Layout.Margin),
	}
	if logger != nil {
		opts = append(opts, lowering.WithLogger(logger))
	}
	return opts
}
