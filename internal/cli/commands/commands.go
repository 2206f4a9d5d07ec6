package commands

import (
	"context"
	"fmt"
	"strings"

	fxsvc "bidops-backend/internal/application/fx"
	usersvc "bidops-backend/internal/application/users"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/pkg/constants"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func MigrateCmd(open DBOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all BidOps tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed")
			return nil
		},
	}
}

func TenantCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}

	var baseCurrency string
	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, err := normalizeCurrency(baseCurrency)
			if err != nil {
				return err
			}
			db, err := open()
			if err != nil {
				return err
			}
			tenant := &domain.Tenant{Name: strings.TrimSpace(args[0]), BaseCurrency: currency}
			if err := db.Create(tenant).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return fmt.Errorf("tenant %q already exists", tenant.Name)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", tenant.TenantID, tenant.Name, tenant.BaseCurrency)
			return nil
		},
	}
	create.Flags().StringVar(&baseCurrency, "base-currency", "QAR", "Tenant base currency")

	cmd.AddCommand(create)
	return cmd
}

func UserCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var tenantRef, fullname, email, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant user with a bcrypt-hashed password",
		RunE: func(cmd *cobra.Command, args []string) error {
			role = strings.ToUpper(strings.TrimSpace(role))
			if !constants.IsValidRole(role) {
				return fmt.Errorf("role must be one of %s", strings.Join(constants.ValidRoles, ", "))
			}
			db, err := open()
			if err != nil {
				return err
			}
			tenant, err := findTenant(db, tenantRef)
			if err != nil {
				return err
			}
			svc := &usersvc.Service{DB: db}
			user, err := svc.Create(context.Background(), tenant.TenantID, usersvc.CreateInput{
				Fullname: fullname,
				Email:    email,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", user.UserID, user.Email, user.Role)
			return nil
		},
	}
	create.Flags().StringVar(&tenantRef, "tenant", "", "Tenant id or name")
	create.Flags().StringVar(&fullname, "name", "", "Full name")
	create.Flags().StringVar(&email, "email", "", "Login email")
	create.Flags().StringVar(&password, "password", "", "Initial password")
	create.Flags().StringVar(&role, "role", constants.Viewer, "ADMIN, MANAGER or VIEWER")
	_ = create.MarkFlagRequired("tenant")

	cmd.AddCommand(create)
	return cmd
}

func FxCmd(open DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fx",
		Short: "Manage tenant FX rates",
	}

	set := &cobra.Command{
		Use:   "set [tenant] [currency] [rate]",
		Short: "Set the rate that converts one unit of currency into the tenant base currency",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			currency, err := normalizeCurrency(args[1])
			if err != nil {
				return err
			}
			rate, err := decimal.NewFromString(args[2])
			if err != nil || !rate.IsPositive() {
				return fmt.Errorf("rate must be a positive number")
			}
			db, err := open()
			if err != nil {
				return err
			}
			tenant, err := findTenant(db, args[0])
			if err != nil {
				return err
			}
			svc := &fxsvc.Service{DB: db}
			saved, err := svc.Upsert(context.Background(), tenant.TenantID, currency, rate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", saved.Currency, saved.RateToBase.String())
			return nil
		},
	}

	// Negative rates must reach the positivity check instead of parsing as flags.
	set.Flags().SetInterspersed(false)

	list := &cobra.Command{
		Use:   "list [tenant]",
		Short: "List FX rates for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			tenant, err := findTenant(db, args[0])
			if err != nil {
				return err
			}
			svc := &fxsvc.Service{DB: db}
			rates, err := svc.List(context.Background(), tenant.TenantID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "base\t%s\n", tenant.BaseCurrency)
			for _, r := range rates {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Currency, r.RateToBase.String())
			}
			return nil
		},
	}

	cmd.AddCommand(set, list)
	return cmd
}
