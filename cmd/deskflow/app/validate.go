package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/deskflow/internal/errors"
	"github.com/phillarmonic/deskflow/internal/parser"
	"github.com/phillarmonic/deskflow/internal/validator"
)

func (a *App) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse and validate an MBL task file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	task, err := parser.ParseFile(path, string(data))
	if err != nil {
		if list, ok := err.(*errors.ParseErrorList); ok {
			fmt.Fprint(cmd.OutOrStdout(), list.FormatErrors())
			return fmt.Errorf("%d parse error(s)", len(list.Errors))
		}
		return err
	}

	if problems := validator.Validate(task); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStdout(), "\033[31mError\033[0m: %s\n", p)
		}
		return fmt.Errorf("%d validation error(s)", len(problems))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: task %q is valid (%d step(s))\n", path, task.Name, len(task.Steps))
	return nil
}
