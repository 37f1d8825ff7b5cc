package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/core/model"
)

type shiftAction struct {
	use   string
	short string
	done  string
	run   func(app *AppContext) func(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)
}

var shiftActions = []shiftAction{
	{"claim", "Claim an open shift", "Shift claimed", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.ClaimShift
	}},
	{"offer", "Offer your shift for swap", "Shift offered", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.OfferSwap
	}},
	{"cancelOffer", "Withdraw your swap offer", "Offer withdrawn", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.CancelOffer
	}},
	{"requestSwap", "Ask to take over an offered shift", "Swap requested", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.RequestSwap
	}},
	{"approve", "Approve a pending swap", "Swap approved", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.ApproveSwap
	}},
	{"deny", "Deny a pending swap", "Swap denied", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.DenySwap
	}},
	{"acknowledge", "Acknowledge a denied swap", "Denial acknowledged", func(app *AppContext) func(context.Context, model.Actor, string) (model.Shift, error) {
		return app.Workflow.AcknowledgeDenial
	}},
}

// ShiftActionCmds creates one command per swap or claim action
func ShiftActionCmds(app *AppContext) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(shiftActions))
	for _, a := range shiftActions {
		a := a
		cmds = append(cmds, &cobra.Command{
			Use:   a.use + " <shift_id>",
			Short: a.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				actor, err := app.Actor()
				if err != nil {
					return err
				}

				app.Logger.Debug("Shift action command",
					zap.String("action", a.use),
					zap.String("shift_id", args[0]))

				shift, err := a.run(app)(app.Ctx, actor, args[0])
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\n✓ %s\n  %s\n\n", a.done, formatShift(app.Workflow.Clock(), shift))
				return nil
			},
		})
	}
	return cmds
}
