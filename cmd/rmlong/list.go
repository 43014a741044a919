package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rmlong/internal/exitcodes"
	"rmlong/internal/extpath"
	"rmlong/internal/walk"
)

type listing struct {
	Root  string   `json:"root"`
	Files []string `json:"files"`
	Dirs  []string `json:"dirs"`
}

func newListCommand() *cobra.Command {
	var (
		jsonOutput bool
		order      string
	)

	cmd := &cobra.Command{
		Use:   "ls <path>",
		Short: "List every file and directory beneath a path",
		Long: `Enumerate a tree the same way "tree" does before deleting it. Directories
are printed in removal order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := walk.ParseOrder(order)
			if err != nil {
				return withCode(exitcodes.InvalidConfig, err)
			}

			root := args[0]
			res := walk.Enumerate(openFS(), extpath.Escape(root))

			l := listing{
				Root:  root,
				Files: stripAll(res.Files),
				Dirs:  stripAll(o.Sort(res.Dirs)),
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(out, l); err != nil {
					return withCode(exitcodes.RuntimeError, err)
				}
				return nil
			}

			for _, f := range l.Files {
				fmt.Fprintf(out, "f %s\n", f)
			}
			for _, d := range l.Dirs {
				fmt.Fprintf(out, "d %s\n", d)
			}
			fmt.Fprintf(out, "%d files, %d directories\n", len(l.Files), len(l.Dirs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&order, "order", string(walk.OrderLength), "directory order: length or topological")
	return cmd
}

func stripAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = extpath.Strip(p)
	}
	return out
}
