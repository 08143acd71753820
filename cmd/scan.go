package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/olegkotsar/yomins-upload/model"
)

func newScanCmd(opts *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [path]",
		Short: "List every file under the local root",
		Long: `List every file under the local root directory (all subdirectories,
all extensions). The numbers in the first column can be passed to
"upload --index".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				a.settings.LocalRootPath = args[0]
			}
			if err := a.saveSettings(); err != nil {
				return err
			}

			runner, cleanup, err := a.newRunner()
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := runner.Scan(cmd.Context(), a.settings.LocalRootPath)
			if err != nil {
				return err
			}

			printEntries(a.out, entries)
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []model.FileEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSEL\tSIZE (MB)\tPATH")
	for i, e := range entries {
		mark := "[ ]"
		if e.Selected {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", i+1, mark, e.SizeMB, e.RelPath)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d files\n", len(entries))
}
