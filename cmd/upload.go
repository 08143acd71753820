package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/olegkotsar/yomins-upload/model"
	"github.com/olegkotsar/yomins-upload/processor"
	"github.com/olegkotsar/yomins-upload/progress"
)

const (
	progressAuto  = "auto"
	progressBar   = "bar"
	progressBytes = "bytes"
	progressNone  = "none"
)

func newUploadCmd(opts *flagValues) *cobra.Command {
	var (
		sel          selection
		progressMode string
	)

	cmd := &cobra.Command{
		Use:   "upload [path]",
		Short: "Upload the selected files to the FTP server",
		Long: `Scan the local root, select files and upload them one at a time.
Every file gets its own connection. The first failure stops the batch.

Select files with --all, --select (glob on the relative path or the file name)
and --index (positions printed by scan). Selections add up.`,
		Example: `  yomins-upload upload --all
  yomins-upload upload ./photos --select '*.jpg' --index 3,7-9
  yomins-upload upload --host ftp.example.com --port 2121 --all --dry-run`,
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

			ctx := cmd.Context()
			entries, err := runner.Scan(ctx, a.settings.LocalRootPath)
			if err != nil {
				return err
			}

			batch := model.NewBatch(entries)
			if err := applySelection(batch, sel, a.log); err != nil {
				return err
			}

			snapshot, err := batch.BeginRun()
			if err != nil {
				return err
			}
			defer batch.EndRun()

			total := len(model.SelectedEntries(snapshot))
			display, err := newDisplay(progressMode, cmd.ErrOrStderr(), total)
			if err != nil {
				return err
			}

			done := progress.Consume(processor.Start(ctx, runner, snapshot, a.settings.Connection()), display)
			printSummary(a.out, done)
			return done.Err
		},
	}

	cmd.Flags().BoolVar(&sel.all, "all", false, "Select every scanned file")
	cmd.Flags().StringArrayVar(&sel.globs, "select", nil, "Select files matching a glob (repeatable)")
	cmd.Flags().StringVar(&sel.indexes, "index", "", "Select files by position, e.g. 1,3,5-7")
	cmd.Flags().StringVar(&progressMode, "progress", progressAuto, "Progress display: auto, bar, bytes, none")

	return cmd
}

// newDisplay picks a renderer. auto shows byte bars on a terminal and nothing otherwise.
func newDisplay(mode string, w io.Writer, total int) (progress.Display, error) {
	switch mode {
	case progressAuto:
		if f, ok := w.(*os.File); ok && progress.IsTerminal(f) {
			return progress.NewMultiBarObserver(w), nil
		}
		return progress.NopDisplay{}, nil
	case progressBar:
		return progress.NewBarObserver(w, total), nil
	case progressBytes:
		return progress.NewMultiBarObserver(w), nil
	case progressNone:
		return progress.NopDisplay{}, nil
	default:
		return nil, fmt.Errorf("unsupported progress mode: %s", mode)
	}
}

func printSummary(w io.Writer, done processor.DoneEvent) {
	s := done.Summary
	if s == nil {
		return
	}

	switch {
	case done.Err == nil:
		fmt.Fprintf(w, "Done: %d/%d files uploaded\n", s.Succeeded, s.Total)
	case errors.Is(done.Err, processor.ErrNothingSelected):
		// reported as the command error
	default:
		fmt.Fprintf(w, "Stopped: %d/%d files uploaded\n", s.Succeeded, s.Total)
		if s.Failed != "" {
			fmt.Fprintf(w, "Failed: %s\n", s.Failed)
		}
	}
}
