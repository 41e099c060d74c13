package cli

import (
	"errors"
	"fmt"

	"github.com/avelstrom/availsync/internal/availability/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var syncAction string

var syncCmd = &cobra.Command{
	Use:   "sync <booking-id>",
	Short: "Reconcile one booking against its sibling products",
	Long: `Runs the reconciliation engine for a single booking, the same way a
lifecycle event would. Useful for backfilling rules after enabling
automation on a resource with existing bookings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ReconcileHandler == nil {
			return errors.New("sync requires database connection")
		}

		bookingID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid booking id %q: %w", args[0], err)
		}

		var result *commands.ReconcileResult
		switch syncAction {
		case "add":
			result, err = app.ReconcileHandler.HandleBookingCreated(cmd.Context(), bookingID)
		case "update":
			result, err = app.ReconcileHandler.HandleBookingUpdated(cmd.Context(), bookingID)
		case "remove":
			result, err = app.ReconcileHandler.HandleBookingRemoved(cmd.Context(), bookingID)
		default:
			return fmt.Errorf("unknown action %q (want add, update or remove)", syncAction)
		}
		if err != nil {
			return err
		}

		switch result.Outcome {
		case commands.OutcomeUnchanged:
			fmt.Println("Availability unchanged, nothing to do.")
		case commands.OutcomeSkipped:
			fmt.Println("Booking not found, nothing to do.")
		default:
			fmt.Printf("Reconciled booking %s: %d sibling product(s) updated.\n",
				result.BookingID, len(result.Siblings))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVarP(&syncAction, "action", "a", "update", "reconciliation action: add, update or remove")
	AddCommand(syncCmd)
}
