package app

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/deskflow/internal/server"
)

func (a *App) newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the newline-delimited JSON TCP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configFile)
		},
	}

	addConfigFlag(cmd, &configFile)
	return cmd
}

func runServe(cmd *cobra.Command, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	e, d := buildEngine(cfg)
	ctx := cmd.Context()
	if err := d.Connect(ctx, desktopConfigFrom(cfg)); err != nil {
		return fmt.Errorf("connecting to remote desktop: %w", err)
	}
	defer d.Disconnect(ctx)

	s := server.New(e, d, cfg)
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	fmt.Fprintf(cmd.OutOrStdout(), "deskflow service listening on %s\n", addr)
	return s.ListenAndServe(ctx, addr)
}
