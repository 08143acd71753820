package main

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegkotsar/yomins-upload/journal"
	"github.com/olegkotsar/yomins-upload/model"
)

func newHistoryCmd(opts *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "history [prefix]",
		Short: "Show recorded upload outcomes from the journal",
		Long: `Show the last recorded outcome for every local file, optionally limited
to full paths starting with prefix. Requires the journal (--journal or
JOURNAL_TYPE=bbolt).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			if !a.cfg.Journal.Enabled() {
				return errors.New("journal is disabled, set --journal or JOURNAL_TYPE=bbolt")
			}

			j, err := journal.CreateJournal(&a.cfg.Journal)
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			defer j.Close()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			records, err := j.GetByPrefix(prefix)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(records))
			for k := range records {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tWHEN\tSIZE (MB)\tFILE\tREMOTE\tERROR")
			for _, k := range keys {
				rec := records[k]
				when := time.Unix(rec.UploadedAt, 0).Format(time.DateTime)
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
					rec.Status, when, model.BytesToMegabytes(rec.Size), k, rec.RemoteName, rec.Error)
			}
			tw.Flush()
			fmt.Fprintf(a.out, "%d records\n", len(keys))
			return nil
		},
	}
}
