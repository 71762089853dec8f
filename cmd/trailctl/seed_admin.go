package main

import (
	"fmt"
	"os"

	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account, or promote an existing one",
	Long: `Creates an admin account with the given credentials. When an account with
that email already exists it is promoted to admin and its password is kept.
Flags default to ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := firstNonEmpty(adminUsername, os.Getenv("ADMIN_USERNAME"))
		email := firstNonEmpty(adminEmail, os.Getenv("ADMIN_EMAIL"))
		password := firstNonEmpty(adminPassword, os.Getenv("ADMIN_PASSWORD"))
		if email == "" || password == "" {
			return fmt.Errorf("admin email and password are required (--email/--password or ADMIN_EMAIL/ADMIN_PASSWORD)")
		}

		auth := service.NewAuthService(repository.NewUserRepository(db), nil, cfg.JWTSecret, cfg.JWTExpiry)
		user, created, err := auth.EnsureAdmin(cmd.Context(), username, email, password)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if created {
			fmt.Fprintln(out, "Admin user created")
		} else {
			fmt.Fprintln(out, "Admin user already exists")
		}
		fmt.Fprintf(out, "  ID:       %s\n  Username: %s\n  Email:    %s\n", user.ID, user.Username, user.Email)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
