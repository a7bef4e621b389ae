// Package app wires the deskflow CLI: one cobra subcommand per entry point
// into the lexer/parser/validator/engine/server stack.
package app

import (
	"github.com/spf13/cobra"
)

// App represents the deskflow command-line application.
type App struct {
	version string
	commit  string
	date    string

	rootCmd *cobra.Command
}

// NewApp creates a new CLI application.
func NewApp(version, commit, date string) *App {
	a := &App{version: version, commit: commit, date: date}

	a.rootCmd = &cobra.Command{
		Use:   "deskflow",
		Short: "Run MBL task files against a remote desktop and a vision model",
		Long: `deskflow interprets MBL (Mini Batch Language) task files: a line-oriented
language whose actions describe UI intent ("click", "type ... into", "expect")
against a remote desktop session, resolved at run time by a vision-language
model that looks at a screenshot and answers where things are.`,
		SilenceUsage: true,
	}

	a.rootCmd.AddCommand(
		a.newRunCmd(),
		a.newValidateCmd(),
		a.newLexCmd(),
		a.newServeCmd(),
		a.newVersionCmd(),
	)

	return a
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}
