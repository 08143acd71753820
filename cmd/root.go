package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/destination"
	"github.com/olegkotsar/yomins-upload/journal"
	"github.com/olegkotsar/yomins-upload/logger"
	"github.com/olegkotsar/yomins-upload/processor"
	"github.com/olegkotsar/yomins-upload/source"
)

// app is what every subcommand works with once flags and environment are merged
type app struct {
	cfg      *config.AppConfig
	settings *config.Settings
	log      logger.Logger
	out      io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   "yomins-upload",
		Short: "Upload selected local files to an FTP server",
		Long: `Scan a local directory (or an S3 bucket), pick files and upload them
one at a time to an FTP server.

Connection settings are kept in settings.json in the working directory and are
saved before every scan and upload. Configuration can also be provided via
environment variables; command-line flags take precedence over both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	registerFlags(rootCmd, opts)

	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newUploadCmd(opts))
	rootCmd.AddCommand(newSettingsCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))

	return rootCmd
}

// loadApp builds configuration from environment, settings file and flags, in that order
func loadApp(cmd *cobra.Command, opts *flagValues) (*app, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	flags := cmd.Flags()
	applyFlags(flags, cfg, opts)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation error: %w", err)
	}

	log := logger.NewLoggerWithWriter(&cfg.Logger, cmd.ErrOrStderr())
	log.Debug("Configuration loaded and validated")

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		log.Warn("Using default settings: %v", err)
	}
	config.ApplySettingsEnv(settings)
	applySettingsFlags(flags, settings, opts)

	return &app{
		cfg:      cfg,
		settings: settings,
		log:      log,
		out:      cmd.OutOrStdout(),
	}, nil
}

func (a *app) saveSettings() error {
	if err := config.SaveSettings(a.cfg.SettingsFile, a.settings); err != nil {
		a.log.Error("Failed to save settings: %v", err)
		return err
	}
	a.log.Debug("Settings saved to %s", a.cfg.SettingsFile)
	return nil
}

// newRunner wires source, destination and journal. The returned cleanup closes the journal.
func (a *app) newRunner() (*processor.Runner, func(), error) {
	src, err := source.CreateSource(&a.cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source: %w", err)
	}
	a.log.Debug("Source initialized: type=%s", a.cfg.Source.SourceType)

	dst, err := destination.CreateDestination(&a.cfg.Destination)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create destination: %w", err)
	}
	a.log.Debug("Destination initialized: type=%s", a.cfg.Destination.DestinationType)

	cleanup := func() {}
	var j journal.JournalProvider
	if a.cfg.Journal.Enabled() {
		j, err = journal.CreateJournal(&a.cfg.Journal)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		a.log.Debug("Journal opened: %s", a.cfg.Journal.Bbolt.Path)
		cleanup = func() {
			if err := j.Close(); err != nil {
				a.log.Error("Error closing journal: %v", err)
			}
		}
	}

	if a.cfg.DryRun {
		a.log.Info("Running in DRY-RUN mode - no files will be uploaded")
	}
	return processor.NewRunner(src, dst, j, a.log, a.cfg.DryRun), cleanup, nil
}
