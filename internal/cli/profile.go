package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/http/validation"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}
	cmd.AddCommand(newProfileUpdateCmd(a))
	return cmd
}

func newProfileUpdateCmd(a *app) *cobra.Command {
	var displayName, bio, topics string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change display name, bio or preferred topics",
		Long:  "Only the flags you pass are changed. Pass an empty value to clear a field.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			var in domainauth.ProfileUpdate
			if flags.Changed("display-name") {
				v := strings.TrimSpace(displayName)
				in.DisplayName = &v
			}
			if flags.Changed("bio") {
				v := strings.TrimSpace(bio)
				in.Bio = &v
			}
			if flags.Changed("topics") {
				v := validation.SplitList(topics)
				in.PreferredTopics = &v
			}
			if in.Empty() {
				return errors.New("nothing to update, pass --display-name, --bio or --topics")
			}
			if fv := validation.Profile(displayName, bio, topics); !fv.Valid() {
				return invalid(fv)
			}

			store, err := a.signedIn(cmd)
			if err != nil {
				return err
			}
			if res := store.UpdateProfile(cmd.Context(), in); !res.Success {
				return failed("update profile", store, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated successfully")
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name shown instead of your username")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&topics, "topics", "", "Comma separated preferred topics")
	return cmd
}

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}
	cmd.AddCommand(newAccountDeleteCmd(a))
	return cmd
}

func newAccountDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete without --yes")
			}
			store, err := a.signedIn(cmd)
			if err != nil {
				return err
			}
			if res := store.DeleteAccount(cmd.Context()); !res.Success {
				return failed("delete account", store, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
