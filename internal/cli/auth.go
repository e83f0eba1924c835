package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tagsentry/tagsentry/internal/auth"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}
	cmd.AddCommand(newAuthTokenCmd())
	return cmd
}

func newAuthTokenCmd() *cobra.Command {
	var (
		userID int64
		email  string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token and store it in the CLI config",
		Long: `Mints a signed access token using the server's JWT secret and saves it
to the CLI config. Intended for development and self-hosted setups where
the operator holds the signing secret.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = viper.GetString("auth.secret")
			}
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or auth.secret in config)")
			}

			token, err := auth.MintToken(userID, email, secret, ttl)
			if err != nil {
				return fmt.Errorf("failed to mint token: %w", err)
			}

			viper.Set("auth.token", token)
			if err := viper.WriteConfig(); err != nil {
				// First run has no config file yet
				if err = viper.SafeWriteConfig(); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			fmt.Printf("Token minted for user %d (expires in %s)\n", userID, ttl)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 1, "user ID to embed in the token")
	cmd.Flags().StringVar(&email, "email", "", "email to embed in the token")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
