package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or save connection settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective connection settings (password hidden)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}

			shown := *a.settings
			if shown.Password != "" {
				shown.Password = "********"
			}
			data, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "# %s\n%s\n", a.cfg.SettingsFile, data)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective connection settings to the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			if err := a.saveSettings(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Settings saved to %s\n", a.cfg.SettingsFile)
			return nil
		},
	})

	return cmd
}
