package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/deskflow/internal/config"
	"github.com/phillarmonic/deskflow/internal/desktop"
	"github.com/phillarmonic/deskflow/internal/engine"
	"github.com/phillarmonic/deskflow/internal/tasklog"
	"github.com/phillarmonic/deskflow/internal/vision"
)

// loadConfig resolves the workspace config file, defaulting to discovery
// when configFile is empty.
func loadConfig(configFile string) (*config.EngineConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildEngine wires an Engine from a loaded config. The remote-desktop
// controller is a deterministic in-memory fake: a real RDP/VNC transport is
// explicitly out of scope, so there is no production Controller to wire
// here yet, and the CLI/server run against the same contract tests do.
func buildEngine(cfg *config.EngineConfig) (*engine.Engine, desktop.Controller) {
	d := desktop.NewFake()

	v := vision.NewHTTPClient(vision.HTTPClientConfig{
		Endpoint:   cfg.VisionModel.Endpoint,
		APIKey:     os.Getenv(cfg.VisionModel.APIKeyEnv),
		Model:      cfg.VisionModel.Model,
		Timeout:    30 * time.Second,
		MaxRetries: cfg.VisionModel.MaxRetries,
	})

	l := tasklog.NewFileLogger(cfg.Logging.Dir)

	return engine.New(d, v, l, cfg), d
}

// desktopConfigFrom builds a desktop.Config from the workspace config's
// remote-desktop section.
func desktopConfigFrom(cfg *config.EngineConfig) desktop.Config {
	return desktop.Config{
		Host:   cfg.RemoteDesktop.Host,
		Port:   cfg.RemoteDesktop.Port,
		Width:  cfg.RemoteDesktop.Width,
		Height: cfg.RemoteDesktop.Height,
	}
}

func addConfigFlag(cmd *cobra.Command, configFile *string) {
	cmd.Flags().StringVarP(configFile, "config", "c", "", "workspace config file (default: discover "+config.DefaultFilename+")")
}
