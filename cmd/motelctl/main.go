// motelctl is the operator CLI: role assignment and the overdue sweep,
// sharing the same services as the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/config"
	"github.com/motelworks/motel-manager/internal/db"
	"github.com/motelworks/motel-manager/internal/models"
	"github.com/motelworks/motel-manager/internal/rbac"
	"github.com/motelworks/motel-manager/internal/services"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connect() (*gorm.DB, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	return db.ConnectAndMigrate(cfg.DatabaseDSN)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "motelctl",
		Short:         "Motel manager admin utility",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(assignRoleCmd(), removeRoleCmd(), listRolesCmd(), sweepOverdueCmd(), migrateCmd(), seedCmd())
	return root
}

func assignRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-role <user-id> <role-name>",
		Short: "Assign a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			conn, err := connect()
			if err != nil {
				return err
			}
			svc := rbac.NewService(conn)
			ctx := context.Background()
			held, err := svc.HasRole(ctx, uint(userID), args[1])
			if err != nil {
				return err
			}
			if held {
				fmt.Printf("user %d already has role %s\n", userID, args[1])
				return nil
			}
			if err := svc.AssignRole(ctx, uint(userID), rbac.RoleName(args[1])); err != nil {
				return err
			}
			fmt.Printf("assigned role %s to user %d\n", args[1], userID)
			return nil
		},
	}
}

func removeRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-role <user-id> <role-name>",
		Short: "Remove a role from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			conn, err := connect()
			if err != nil {
				return err
			}
			if err := rbac.NewService(conn).RemoveRole(context.Background(), uint(userID), rbac.RoleName(args[1])); err != nil {
				return err
			}
			fmt.Printf("removed role %s from user %d\n", args[1], userID)
			return nil
		},
	}
}

func listRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-roles [user-id]",
		Short: "List all roles, or one user's roles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				userID, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid user id %q", args[0])
				}
				names, err := rbac.NewService(conn).UserRoles(context.Background(), uint(userID))
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			}
			var roles []models.Role
			if err := conn.Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
				return err
			}
			for _, r := range roles {
				fmt.Printf("%s (%s): %d permissions\n", r.Name, r.DisplayName, len(r.Permissions))
			}
			return nil
		},
	}
}

func sweepOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Transition unpaid past-due invoices to overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			svc := services.NewInvoiceService(conn, services.NewRateService(conn))
			n, err := svc.SweepOverdue(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("transitioned %d invoices to overdue\n", n)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := connect()
			if err == nil {
				fmt.Println("migrations completed")
			}
			return err
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed default roles and permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			if err := db.Seed(conn); err != nil {
				return err
			}
			fmt.Println("seeded roles and permissions")
			return nil
		},
	}
}
