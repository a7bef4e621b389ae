// Package config loads the workspace configuration file that tunes the
// engine, the remote desktop connection, the vision model client, and the
// enclosing TCP service.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the default path searched for a workspace config.
const DefaultFilename = ".deskflow/config.yaml"

// RemoteDesktopConfig describes how to reach the controlled desktop.
type RemoteDesktopConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// VisionModelConfig describes the vision model endpoint.
type VisionModelConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKeyEnv  string `yaml:"apiKeyEnv"`
	Model      string `yaml:"model"`
	MaxRetries int    `yaml:"maxRetries"`
}

// LoggingConfig controls where task logs and screenshots are written.
type LoggingConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig controls the optional TCP service.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EngineConfig is the full set of knobs the workspace file can set.
type EngineConfig struct {
	DefaultExpectTimeoutSeconds int                 `yaml:"defaultExpectTimeoutSeconds"`
	ExpectRetryIntervalsMs      []int               `yaml:"expectRetryIntervalsMs"`
	PostActionDelayMs           int                 `yaml:"postActionDelayMs"`
	PostClickDelayMs            int                 `yaml:"postClickDelayMs"`
	TypingDelayMs               int                 `yaml:"typingDelayMs"`
	RemoteDesktop               RemoteDesktopConfig `yaml:"remoteDesktop"`
	VisionModel                 VisionModelConfig   `yaml:"visionModel"`
	Logging                     LoggingConfig       `yaml:"logging"`
	Server                      ServerConfig        `yaml:"server"`
	TasksDir                    string              `yaml:"tasksDir"`
}

func defaults() EngineConfig {
	return EngineConfig{
		DefaultExpectTimeoutSeconds: 30,
		ExpectRetryIntervalsMs:      []int{500, 1000, 2000, 4000},
		PostActionDelayMs:           200,
		PostClickDelayMs:            300,
		TypingDelayMs:               20,
		RemoteDesktop: RemoteDesktopConfig{
			Host:   "127.0.0.1",
			Port:   3389,
			Width:  1920,
			Height: 1080,
		},
		VisionModel: VisionModelConfig{
			APIKeyEnv:  "DESKFLOW_VISION_API_KEY",
			MaxRetries: 3,
		},
		Logging: LoggingConfig{Dir: ".deskflow/logs"},
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8791},
		TasksDir: ".deskflow/tasks",
	}
}

// FindConfigFile resolves the workspace config to load: an explicit path if
// given, otherwise the default location, falling back to built-in defaults
// (reported via the bool) if nothing is on disk.
func FindConfigFile(filename string) (path string, found bool, err error) {
	if filename != "" {
		if _, statErr := os.Stat(filename); statErr != nil {
			return "", false, fmt.Errorf("specified config file %q not found", filename)
		}
		return filename, true, nil
	}

	if _, statErr := os.Stat(DefaultFilename); statErr == nil {
		return DefaultFilename, true, nil
	}

	return "", false, nil
}

// Load reads and merges the workspace config at filename over the built-in
// defaults. An empty filename with nothing at DefaultFilename yields pure
// defaults; an explicit filename that does not exist is an error.
func Load(filename string) (*EngineConfig, error) {
	cfg := defaults()

	path, found, err := FindConfigFile(filename)
	if err != nil {
		return nil, err
	}
	if !found {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	if len(cfg.ExpectRetryIntervalsMs) == 0 {
		cfg.ExpectRetryIntervalsMs = defaults().ExpectRetryIntervalsMs
	}

	return &cfg, nil
}
