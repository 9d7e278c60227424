package main

import (
	"fmt"

	"go-leave/internal/app"
	"go-leave/internal/user"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var req user.CreateUserRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account, including admins that cannot self-register",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
				return fmt.Errorf("--name, --email and a --password of at least 6 characters are required")
			}
			return withModules(func(_ *app.Infra, m *app.Modules) error {
				created, err := m.Users.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", created.Role, created.Email, created.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "display name")
	create.Flags().StringVar(&req.Email, "email", "", "login email")
	create.Flags().StringVar(&req.Password, "password", "", "initial password")
	create.Flags().StringVar(&req.Department, "department", "", "department, HR admins use \"HR\"")
	create.Flags().StringVar(&req.Role, "role", user.RoleEmployee, "admin or employee")
	cmd.AddCommand(create)

	return cmd
}
