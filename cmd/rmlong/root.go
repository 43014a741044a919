package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rmlong/internal/exitcodes"
)

// configEnv names the config file when --config is not given; .env is honored
const configEnv = "RMLONG_CONFIG"

type globalFlags struct {
	configPath string
	dryRun     bool
	logLevel   string
}

// exitError carries a process exit code through cobra's RunE
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package variables.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "rmlong",
		Short: "Remove files and directory trees with very long paths",
		Long: `rmlong deletes files and whole directory trees whose paths may exceed the
traditional 260 character limit. On Windows every path is passed to the system
with the \\?\ extended-length prefix.

Tree removal is best effort: entries that cannot be deleted are skipped and the
command reports whether the root is gone afterwards.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv(configEnv), "config file (YAML); defaults to $"+configEnv)
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "enumerate and log without deleting anything")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newTreeCommand(flags))
	cmd.AddCommand(newFileCommand(flags))
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newHistoryCommand(flags))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// run executes the command tree and maps the outcome to an exit code
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return exitcodes.Success
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "Error:", ee.err)
		}
		return ee.code
	}

	fmt.Fprintln(stderr, "Error:", err)
	return exitcodes.RuntimeError
}

// Execute runs the CLI with the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Print the version number of rmlong`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rmlong version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
