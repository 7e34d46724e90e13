package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"roadside-rescue/internal/client/api"
	"roadside-rescue/internal/client/guard"
	"roadside-rescue/internal/client/notify"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(guard.PageLogin); err != nil {
				return err
			}
			if password == "" {
				fmt.Fprint(a.out, "Password: ")
				line, _ := a.in.Next()
				password = strings.TrimSpace(line)
			}
			res, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				notify.APIError(a.notifier, err, "Login failed")
				return err
			}
			a.notifier.Success(fmt.Sprintf("Logged in as %s", res.Role))
			fmt.Fprintf(a.out, "Dashboard: %s\n", a.guard.Resolve(guard.PageDashboard))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var in api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a driver or mechanic account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.enter(guard.PageRegister); err != nil {
				return err
			}
			user, err := a.api.Register(cmd.Context(), in)
			if err != nil {
				notify.APIError(a.notifier, err, "Registration failed")
				return err
			}
			a.notifier.Success(fmt.Sprintf("Account created for %s. You can now log in.", user.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number, digits only")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Role, "role", "driver", "driver or mechanic")
	for _, f := range []string{"name", "email", "phone", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(*cobra.Command, []string) error {
			a.store.Logout()
			a.notifier.Info("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(*cobra.Command, []string) error {
			claims := a.store.Claims()
			if claims == nil {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			fmt.Fprintf(a.out, "User:    %s\n", claims.Subject)
			if claims.Name != "" {
				fmt.Fprintf(a.out, "Name:    %s\n", claims.Name)
			}
			fmt.Fprintf(a.out, "Role:    %s\n", a.store.Role())
			if !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(a.out, "Expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}
