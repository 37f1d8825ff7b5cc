package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/coffee-rota/pkg/auth"
)

// MintTokenCmd creates the mintToken command. Tokens are signed with JWT_SECRET,
// so they are only accepted by a server sharing that secret.
func MintTokenCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mintToken <profile_id>",
		Short: "Mint a bearer token for a profile, for local testing of the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if err := app.Secrets.RequireJWT(); err != nil {
				return err
			}
			if _, err := app.Database.GetProfile(app.Ctx, args[0]); err != nil {
				return fmt.Errorf("failed to find profile %s: %w", args[0], err)
			}

			verifier, err := auth.NewVerifier(app.Secrets.JWTSecret, app.Cfg.JWTAudience)
			if err != nil {
				return err
			}
			token, err := verifier.Mint(args[0], time.Now(), ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")

	return cmd
}
