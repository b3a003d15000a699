package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/sfss/internal/config"
	"github.com/templui/sfss/internal/model"
	"github.com/templui/sfss/internal/service"
)

func TokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		Example: `  sfssctl token --user 42 --email a@x.com
  sfssctl token --user 42 --email a@x.com --expiry 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if expiry <= 0 {
				expiry = cfg.JWTExpiry
			}

			auth := service.NewAuthService(cfg.JWTSecret, expiry)
			token, expiresAt, err := auth.GenerateJWT(model.Identity{UserID: userID, Email: email})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&email, "email", "", "user email, matched against share recipients")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (default JWT_EXPIRY)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
