package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account and session commands",
	}

	cmd.AddCommand(newSignupCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newMeCmd())

	return cmd
}

func newSignupCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"username": username,
				"email":    email,
				"password": password,
			}
			return authenticate(cmd, "/api/auth/signup", body)
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVarP(&password, "pass", "p", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"email":    email,
				"password": password,
			}
			return authenticate(cmd, "/api/auth/login", body)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVarP(&password, "pass", "p", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func authenticate(cmd *cobra.Command, path string, body any) error {
	var result AuthResult
	if err := client.Post(cmd.Context(), path, body, &result); err != nil {
		return err
	}

	if err := cfg.SaveToken(result.SessionToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.SessionToken)

	output(cmd).Print(result)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), "/api/auth/logout", nil, nil); err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			client.SetToken("")

			output(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := currentUser(cmd)
			if err != nil {
				return err
			}

			output(cmd).Print(*user)
			return nil
		},
	}
}

var errNotLoggedIn = errors.New("not logged in")

// currentUser resolves the user behind the stored session token
func currentUser(cmd *cobra.Command) (*User, error) {
	var user *User
	if err := client.Get(cmd.Context(), "/api/auth/session", &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}
