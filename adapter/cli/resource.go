package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Manage resources and their automation flags",
}

var resourceEnableCmd = &cobra.Command{
	Use:   "enable <resource-id>",
	Short: "Enable availability automation for a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setResourceAutomation(cmd, args[0], true)
	},
}

var resourceDisableCmd = &cobra.Command{
	Use:   "disable <resource-id>",
	Short: "Disable availability automation for a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setResourceAutomation(cmd, args[0], false)
	},
}

var attachSortOrder int

var resourceAttachCmd = &cobra.Command{
	Use:   "attach <resource-id> <product-id>",
	Short: "Attach a product to a resource",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ResourceRepo == nil {
			return errors.New("resource attach requires database connection")
		}

		resourceID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid resource id %q: %w", args[0], err)
		}
		productID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid product id %q: %w", args[1], err)
		}

		if err := app.ResourceRepo.Attach(cmd.Context(), resourceID, productID, attachSortOrder); err != nil {
			return err
		}
		fmt.Printf("Attached product %s to resource %s.\n", productID, resourceID)
		return nil
	},
}

func setResourceAutomation(cmd *cobra.Command, rawID string, enabled bool) error {
	app := GetApp()
	if app == nil || app.SettingsWriter == nil {
		return errors.New("resource commands require a settings store")
	}

	resourceID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid resource id %q: %w", rawID, err)
	}

	if err := app.SettingsWriter.SetAutomation(cmd.Context(), resourceID, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("Automation %s for resource %s.\n", state, resourceID)
	return nil
}

func init() {
	resourceAttachCmd.Flags().IntVar(&attachSortOrder, "sort-order", 0, "position of the product in the resource's sibling list")
	resourceCmd.AddCommand(resourceEnableCmd)
	resourceCmd.AddCommand(resourceDisableCmd)
	resourceCmd.AddCommand(resourceAttachCmd)
	AddCommand(resourceCmd)
}
