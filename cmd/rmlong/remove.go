package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rmlong/internal/exitcodes"
	"rmlong/internal/remover"
)

type treeResult struct {
	Root         string   `json:"root"`
	Removed      bool     `json:"removed"`
	Rejected     string   `json:"rejected,omitempty"`
	FilesRemoved int      `json:"files_removed"`
	DirsRemoved  int      `json:"dirs_removed"`
	Failures     []string `json:"failures,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
}

func newTreeResult(rep remover.Report) treeResult {
	res := treeResult{
		Root:         rep.Root,
		Removed:      rep.Removed,
		FilesRemoved: rep.FilesRemoved,
		DirsRemoved:  rep.DirsRemoved,
		DurationMS:   rep.Duration.Milliseconds(),
	}
	if rep.Rejected != nil {
		res.Rejected = rep.Rejected.Error()
	}
	for _, f := range rep.Failures {
		res.Failures = append(res.Failures, fmt.Sprintf("%s %s: %v", f.Kind, f.Path, f.Err))
	}
	return res
}

func newTreeCommand(flags *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tree <path>...",
		Short: "Remove directory trees",
		Long: `Remove each directory and everything beneath it. Entries that cannot be
deleted are skipped; the exit status is 5 if any root still exists afterwards
and 3 if a root was refused by the safety checks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			var results []treeResult
			for _, root := range args {
				results = append(results, newTreeResult(a.remover.RemoveTreeReport(root)))
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(out, results); err != nil {
					return withCode(exitcodes.RuntimeError, err)
				}
			} else {
				printTreeResults(out, results, a.cfg.DryRun)
			}

			return treeExit(results, a.cfg.DryRun)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	return cmd
}

func treeExit(results []treeResult, dryRun bool) error {
	incomplete := 0
	for _, r := range results {
		if r.Rejected != "" {
			return withCode(exitcodes.SafetyViolation, fmt.Errorf("%s: %s", r.Root, r.Rejected))
		}
		if !r.Removed {
			incomplete++
		}
	}
	if incomplete > 0 && !dryRun {
		return withCode(exitcodes.Incomplete, fmt.Errorf("%d of %d trees not fully removed", incomplete, len(results)))
	}
	return nil
}

func printTreeResults(w io.Writer, results []treeResult, dryRun bool) {
	for _, r := range results {
		switch {
		case r.Rejected != "":
			fmt.Fprintf(w, "REJECTED  %s (%s)\n", r.Root, r.Rejected)
		case dryRun:
			fmt.Fprintf(w, "DRY RUN   %s\n", r.Root)
		case r.Removed:
			fmt.Fprintf(w, "REMOVED   %s (%d files, %d dirs)\n", r.Root, r.FilesRemoved, r.DirsRemoved)
		default:
			fmt.Fprintf(w, "INCOMPLETE %s (%d files, %d dirs, %d failures)\n", r.Root, r.FilesRemoved, r.DirsRemoved, len(r.Failures))
			for _, f := range r.Failures {
				fmt.Fprintf(w, "  %s\n", f)
			}
		}
	}
}

func newFileCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>...",
		Short: "Remove single files",
		Long:  `Remove each file with one native delete call. The exit status is 5 if any call failed.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				switch {
				case a.cfg.DryRun:
					a.remover.RemoveFile(path)
					fmt.Fprintf(out, "DRY RUN   %s\n", path)
				case a.remover.RemoveFile(path):
					fmt.Fprintf(out, "REMOVED   %s\n", path)
				default:
					failed++
					fmt.Fprintf(out, "FAILED    %s\n", path)
				}
			}

			if failed > 0 {
				return withCode(exitcodes.Incomplete, fmt.Errorf("%d of %d files not removed", failed, len(args)))
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
