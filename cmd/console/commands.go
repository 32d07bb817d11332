package main

import (
	"context"
	"fmt"

	"admin-console/internal/console"
	"admin-console/internal/models"

	"github.com/spf13/cobra"
)

func loginCmd(flags *globalFlags) *cobra.Command {
	var form models.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the access token",
		Long: `Log in with a login name and an already hashed password.

The token is printed, not stored. Pass it to later commands with --token or
the CONSOLE_TOKEN environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(cmd, flags, func(ctx context.Context, c *console.Console) (any, error) {
				return c.Auth.Login(ctx, form)
			})
		},
	}

	cmd.Flags().StringVarP(&form.LoginName, "user", "u", "", "Login name")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Hashed password")
	cmd.Flags().StringVar(&form.TenantAlias, "tenant", "", "Tenant alias (default: api.tenant_alias)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func menuCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the route tree built from the menu list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(cmd, flags, func(ctx context.Context, c *console.Console) (any, error) {
				return c.Menus.GetMenuList(ctx)
			})
		},
	}
}

func deptCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dept",
		Short: "Print the department tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(cmd, flags, func(ctx context.Context, c *console.Console) (any, error) {
				return c.Depts.GetDeptTree(ctx)
			})
		},
	}
}

func usersCmd(flags *globalFlags) *cobra.Command {
	var (
		search models.UserSearchParams
		sortBy string
		asc    bool
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortBy != "" {
				search.Sorts = []models.SortItem{{Column: sortBy, Asc: asc}}
			}
			return withConsole(cmd, flags, func(ctx context.Context, c *console.Console) (any, error) {
				return c.Users.GetUserList(ctx, search)
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&search.Current, "page", 1, "Page number")
	f.IntVar(&search.Size, "size", 20, "Page size")
	f.StringVar(&search.LoginName, "login-name", "", "Filter by login name")
	f.StringVar(&search.Username, "name", "", "Filter by user name")
	f.Int64Var(&search.DeptID, "dept", 0, "Filter by department id")
	f.StringVar(&sortBy, "sort", "", "Sort column")
	f.BoolVar(&asc, "asc", false, "Sort ascending")
	return cmd
}

func rolesCmd(flags *globalFlags) *cobra.Command {
	var (
		params models.RolePageParams
		status string
	)

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List roles page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch status {
			case "":
			case "enabled":
				params.Status = models.StatusEnabled
			case "disabled":
				params.Status = models.StatusDisabled
			default:
				return fmt.Errorf("unknown status %q, want enabled or disabled", status)
			}
			return withConsole(cmd, flags, func(ctx context.Context, c *console.Console) (any, error) {
				return c.Roles.GetRolePage(ctx, params)
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&params.Current, "page", 1, "Page number")
	f.IntVar(&params.Size, "size", 20, "Page size")
	f.StringVar(&params.RoleName, "name", "", "Filter by role name")
	f.StringVar(&status, "status", "", "Filter by status: enabled or disabled")
	return cmd
}

func bootstrapCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Fetch user info, routes and departments in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(cmd, flags, func(ctx context.Context, c *console.Console) (any, error) {
				return c.Bootstrap(ctx)
			})
		},
	}
}
