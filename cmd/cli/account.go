package main

import (
	"fmt"

	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/spf13/cobra"
)

func init() {
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("password", "", "Password (prompted if empty)")
	registerCmd.Flags().String("confirm", "", "Password confirmation (prompted if empty)")

	loginCmd.Flags().String("password", "", "Password (prompted if empty)")

	profileCmd.Flags().String("username", "", "New username")
	profileCmd.Flags().String("password", "", "New password, leave empty to keep the current one")
	profileCmd.Flags().String("confirm", "", "New password confirmation")
	_ = profileCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, profileCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register <user-id>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, err := flagOrPrompt(cmd, "password", "Password: ")
		if err != nil {
			return err
		}
		confirm, err := flagOrPrompt(cmd, "confirm", "Confirm password: ")
		if err != nil {
			return err
		}

		id, err := client.Auth.Register(cmd.Context(), backend.RegisterRequest{
			UserID:   args[0],
			Email:    email,
			Password: password,
			Name:     name,
		}, confirm)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Log in with `quiniela login %s`.\n", id, id)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Log in and remember the identity on this device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := flagOrPrompt(cmd, "password", "Password: ")
		if err != nil {
			return err
		}
		id, err := client.Auth.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", id)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the identity and cached event on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.Auth.CurrentUser()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Change username and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		confirm, _ := cmd.Flags().GetString("confirm")
		if err := client.Auth.UpdateProfile(cmd.Context(), username, password, confirm); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
		return nil
	},
}
