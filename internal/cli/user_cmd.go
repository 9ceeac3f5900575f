package cli

import (
	"fmt"

	"task_manager/internal/domain"

	"github.com/spf13/cobra"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd(app))
	return cmd
}

func newUserCreateCmd(app *App) *cobra.Command {
	var in domain.RegisterInput
	var admin bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account, optionally with the admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			role := domain.RoleUser
			if admin {
				role = domain.RoleAdmin
			}
			u, err := b.Accounts.Register(cmd.Context(), in, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s <%s> role=%s\n", u.ID, u.Name, u.Email, u.RoleName)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTokenCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.backend(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			token, _, err := b.Accounts.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
