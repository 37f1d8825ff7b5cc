package commands

import (
	"github.com/spf13/cobra"
)

// MarketplaceCmd creates the marketplace command
func MarketplaceCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketplace",
		Short: "List upcoming open shifts and shifts offered for swap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := cmd.Flags().GetString("store")

			shifts, err := app.Workflow.ListMarketplace(app.Ctx, app.storeArg(store))
			if err != nil {
				return err
			}

			printShifts(cmd.OutOrStdout(), app.Workflow.Clock(), "Marketplace", shifts)
			return nil
		},
	}

	cmd.Flags().String("store", "", "Only show shifts at this store")

	return cmd
}

// ApprovalsCmd creates the approvals command
func ApprovalsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "List swap requests waiting for a manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _ := cmd.Flags().GetString("store")

			actor, err := app.Actor()
			if err != nil {
				return err
			}

			shifts, err := app.Workflow.PendingApprovals(app.Ctx, actor, app.storeArg(store))
			if err != nil {
				return err
			}

			printShifts(cmd.OutOrStdout(), app.Workflow.Clock(), "Pending approvals", shifts)
			return nil
		},
	}

	cmd.Flags().String("store", "", "Only show shifts at this store")

	return cmd
}
