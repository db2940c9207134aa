package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wedding-planner/backend/config"
	"github.com/wedding-planner/backend/internal/integration/adapters"
)

func newTokenCmd() *cobra.Command {
	var (
		flagOwner string
		flagEmail string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ownerID := uuid.New()
			if flagOwner != "" {
				parsed, err := uuid.Parse(flagOwner)
				if err != nil {
					return fmt.Errorf("invalid --owner: %w", err)
				}
				ownerID = parsed
			}

			cfg := config.Load()
			tokenService := adapters.NewTokenService(cfg.JWT.Secret)

			token, err := tokenService.GenerateAccessToken(ownerID, flagEmail, cfg.JWT.AccessTokenExpiry)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOwner, "owner", "", "Owner user ID (random when empty)")
	cmd.Flags().StringVar(&flagEmail, "email", "", "Email claim")

	return cmd
}
