package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/deskflow/internal/lexer"
)

func (a *App) newLexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lex <file>",
		Short: "Dump the lexer's token stream for an MBL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLex(cmd, args[0])
		},
	}
}

func runLex(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	tokens, err := lexer.Lex(string(data))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, tok := range tokens {
		fmt.Fprintf(out, "%4d: %s\n", i, tok.String())
	}
	return nil
}
