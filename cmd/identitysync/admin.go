package main

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/app/models"
	"github.com/ManuelReschke/IdentitySync/app/repository"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
	"github.com/ManuelReschke/IdentitySync/internal/pkg/database"
)

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	admin.AddCommand(newAdminCreateCmd())
	return admin
}

func newAdminCreateCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			password = adminPassword(password, cfg)
			if password == "" {
				return errors.New("password required: use --password or ADMIN_PASSWORD")
			}
			db, err := database.SetupDatabase(cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			admin, err := models.NewAdmin(email, name, password)
			if err != nil {
				return fmt.Errorf("invalid admin: %w", err)
			}

			repo := repository.NewAdminRepository(db)
			if err := repo.Create(cmd.Context(), admin); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("an admin with email %s already exists", admin.Email)
				}
				return err
			}

			log.Infow("admin created", "adminId", admin.ID, "email", admin.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %d <%s>\n", admin.ID, admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// adminPassword prefers the flag over ADMIN_PASSWORD from the environment or
// .env file.
func adminPassword(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Admin.Password
}
