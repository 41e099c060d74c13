package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage global settings",
}

var settingsLoggingCmd = &cobra.Command{
	Use:   "logging <on|off>",
	Short: "Toggle diagnostic logging for reconciliation runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.SettingsWriter == nil {
			return errors.New("settings commands require a settings store")
		}

		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("invalid value %q (want on or off)", args[0])
		}

		if err := app.SettingsWriter.SetLogging(cmd.Context(), enabled); err != nil {
			return err
		}
		fmt.Printf("Diagnostic logging turned %s.\n", args[0])
		return nil
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Settings == nil {
			return errors.New("settings commands require a settings store")
		}

		logging, err := app.Settings.LoggingEnabled(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Diagnostic logging: %v\n", logging)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsLoggingCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	AddCommand(settingsCmd)
}
