package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/http/validation"
)

func newLoginCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Long:  "Log in with your forum username and password. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.prompt(cmd, "Username", username)
			if err != nil {
				return err
			}
			user = strings.TrimSpace(user)
			password, err := a.prompt(cmd, "Password", "")
			if err != nil {
				return err
			}
			if fv := validation.Login(user, password); !fv.Valid() {
				return invalid(fv)
			}

			store, err := a.session(cmd)
			if err != nil {
				return err
			}
			res := store.Login(cmd.Context(), user, password)
			if !res.Success {
				return fmt.Errorf("login: %w", res.Failure)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", store.Snapshot().User.Name())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var in domainauth.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Long:  "Create an anonymous forum account. The password and its confirmation are read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Username, err = a.prompt(cmd, "Username", in.Username); err != nil {
				return err
			}
			if in.Password, err = a.prompt(cmd, "Password", ""); err != nil {
				return err
			}
			if in.ConfirmPassword, err = a.prompt(cmd, "Confirm password", ""); err != nil {
				return err
			}
			in.Username = strings.TrimSpace(in.Username)
			in.DisplayName = strings.TrimSpace(in.DisplayName)
			if fv := validation.Register(in); !fv.Valid() {
				return invalid(fv)
			}

			store, err := a.session(cmd)
			if err != nil {
				return err
			}
			res := store.Register(cmd.Context(), in)
			if !res.Success {
				return fmt.Errorf("register: %w", res.Failure)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", store.Snapshot().User.Name())
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "Optional display name")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.session(cmd)
			if err != nil {
				return err
			}
			store.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.session(cmd)
			if err != nil {
				return err
			}
			snap := store.Snapshot()
			out := cmd.OutOrStdout()
			if !snap.Authenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			u := snap.User
			fmt.Fprintf(out, "Username: %s\n", u.Username)
			fmt.Fprintf(out, "  Name:   %s\n", u.Name())
			fmt.Fprintf(out, "  ID:     %s\n", u.UserID)
			if u.Bio != nil && *u.Bio != "" {
				fmt.Fprintf(out, "  Bio:    %s\n", *u.Bio)
			}
			if len(u.PreferredTopics) > 0 {
				fmt.Fprintf(out, "  Topics: %s\n", strings.Join(u.PreferredTopics, ", "))
			}
			if !u.CreatedAt.IsZero() {
				fmt.Fprintf(out, "  Joined: %s\n", u.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}
