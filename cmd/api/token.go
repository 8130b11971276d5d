package main

import (
	"fmt"

	"clickservice/internal/config"
	"clickservice/internal/pkg/jwt"

	"github.com/spf13/cobra"
)

// newTokenCommand mints a bearer token for local testing; login itself lives
// outside this service.
func newTokenCommand() *cobra.Command {
	var (
		userID int64
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed JWT for a user id and role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			token, err := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateToken(userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id (required)")
	cmd.Flags().StringVar(&role, "role", "client", "client, professional or operator")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
