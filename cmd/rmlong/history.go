package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rmlong/internal/database"
	"rmlong/internal/exitcodes"
)

type historyFlags struct {
	dbPath     string
	recent     int
	action     string
	root       string
	stats      bool
	days       int
	prune      int
	jsonOutput bool
}

func newHistoryCommand(flags *globalFlags) *cobra.Command {
	hf := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the removal history database",
		Long: `Query the SQLite removal history written when database_path is configured.

Examples:
  rmlong history --recent 10           # 10 most recent events
  rmlong history --stats --days 7      # statistics for the last week
  rmlong history --action ERROR        # only failed deletes
  rmlong history --root /build/out     # events for one tree
  rmlong history --prune 90            # drop records older than 90 days`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := hf.dbPath
			if dbPath == "" {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				dbPath = cfg.DatabasePath
			}
			if dbPath == "" {
				return withCode(exitcodes.InvalidConfig, errors.New("no database: set database_path in the config or pass --db"))
			}

			db, err := database.NewRemovalDB(dbPath)
			if err != nil {
				return withCode(exitcodes.RuntimeError, fmt.Errorf("open database %s: %w", dbPath, err))
			}
			defer db.Close()

			if err := queryHistory(cmd.OutOrStdout(), db, hf); err != nil {
				return withCode(exitcodes.RuntimeError, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hf.dbPath, "db", "", "path to the history database (overrides database_path)")
	cmd.Flags().IntVar(&hf.recent, "recent", 20, "number of records to show")
	cmd.Flags().StringVar(&hf.action, "action", "", "filter by action (DELETE, ERROR, SKIP, DRY_RUN)")
	cmd.Flags().StringVar(&hf.root, "root", "", "filter by tree root")
	cmd.Flags().BoolVar(&hf.stats, "stats", false, "show statistics")
	cmd.Flags().IntVar(&hf.days, "days", 30, "number of days for statistics")
	cmd.Flags().IntVar(&hf.prune, "prune", 0, "delete records older than N days")
	cmd.Flags().BoolVar(&hf.jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func queryHistory(w io.Writer, db *database.RemovalDB, hf *historyFlags) error {
	switch {
	case hf.prune > 0:
		n, err := db.DeleteOldRecords(hf.prune)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
		fmt.Fprintf(w, "Deleted %d records older than %d days\n", n, hf.prune)
		return nil
	case hf.stats:
		return showStats(w, db, hf.days, hf.jsonOutput)
	}

	var (
		records []database.RemovalRecord
		err     error
	)
	switch {
	case hf.action != "":
		records, err = db.GetByAction(hf.action, hf.recent)
	case hf.root != "":
		records, err = db.GetByRoot(hf.root, hf.recent)
	default:
		records, err = db.GetRecent(hf.recent)
	}
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}

	if hf.jsonOutput {
		return writeJSON(w, records)
	}
	printRecords(w, records)
	return nil
}

func showStats(w io.Writer, db *database.RemovalDB, days int, jsonOutput bool) error {
	stats, err := db.GetStats(days)
	if err != nil {
		return fmt.Errorf("get statistics: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, stats)
	}

	fmt.Fprintf(w, "Removal Statistics (Last %d days)\n", days)
	fmt.Fprintf(w, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Removed:   %d\n", stats.TotalRemoved)
	fmt.Fprintf(w, "Errors:    %d\n", stats.TotalErrors)
	fmt.Fprintf(w, "Skipped:   %d\n", stats.TotalSkipped)
	fmt.Fprintf(w, "Dry run:   %d\n", stats.TotalDryRun)
	fmt.Fprintf(w, "Roots:     %d\n", stats.Roots)

	if len(stats.ByAction) > 0 {
		actions := make([]string, 0, len(stats.ByAction))
		for action := range stats.ByAction {
			actions = append(actions, action)
		}
		sort.Strings(actions)

		fmt.Fprintln(w, "\nBy Action:")
		for _, action := range actions {
			fmt.Fprintf(w, "  %-10s %d\n", action, stats.ByAction[action])
		}
	}
	return nil
}

func printRecords(w io.Writer, records []database.RemovalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTimestamp\tAction\tType\tPath\tError")
	_, _ = fmt.Fprintln(tw, "--\t---------\t------\t----\t----\t-----")

	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, r.ObjectType, r.Path, r.ErrorMessage)
	}
	_ = tw.Flush()
}
