package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/deskflow/internal/errors"
	"github.com/phillarmonic/deskflow/internal/parser"
	"github.com/phillarmonic/deskflow/internal/validator"
)

func (a *App) newRunCmd() *cobra.Command {
	var (
		configFile string
		params     []string
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run an MBL task file to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, args[0], configFile, params)
		},
	}

	addConfigFlag(cmd, &configFile)
	cmd.Flags().StringArrayVar(&params, "param", nil, "task input in key=value form, repeatable")

	return cmd
}

func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		params[k] = v
	}
	return params, nil
}

func runTask(cmd *cobra.Command, path, configFile string, paramPairs []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	task, err := parser.ParseFile(path, string(data))
	if err != nil {
		if list, ok := err.(*errors.ParseErrorList); ok {
			fmt.Fprint(cmd.ErrOrStderr(), list.FormatErrors())
		}
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if problems := validator.Validate(task); len(problems) > 0 {
		return fmt.Errorf("task %q failed validation: %s", task.Name, strings.Join(problems, "; "))
	}

	params, err := parseParams(paramPairs)
	if err != nil {
		return err
	}

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

	result, err := e.Execute(ctx, task, params)
	if result != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "task %q: success=%v steps=%d/%d duration=%dms\n",
			task.Name, result.Success, result.StepsCompleted, result.StepsTotal, result.DurationMs)
		for k, v := range result.Outputs {
			fmt.Fprintf(out, "  output %s = %q\n", k, v)
		}
	}
	return err
}
