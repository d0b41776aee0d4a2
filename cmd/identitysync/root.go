package main

import (
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/server"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "identitysync",
		Short: "IdentitySync mirrors Clerk identity and billing data",
		Long: `IdentitySync receives signed Clerk webhooks and mirrors users,
organizations, memberships and billing records into a local database.
Mirrored data is exposed through an admin-gated JSON API.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAdminCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), cfg)
		},
	}
}
