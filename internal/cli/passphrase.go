package cli

import (
	"fmt"

	"envault-cli/internal/api"

	"github.com/spf13/cobra"
)

func newPassphraseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passphrase",
		Short: "Manage the vault passphrase",
	}
	cmd.AddCommand(newPassphraseStatusCmd(app))
	cmd.AddCommand(newPassphraseCreateCmd(app))
	cmd.AddCommand(newPassphraseChangeCmd(app))
	return cmd
}

func newPassphraseStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the vault passphrase exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ensureLogin(ctx, client); err != nil {
				return err
			}
			exists, err := client.PassphraseExists(ctx)
			if err != nil {
				return err
			}
			if exists {
				fmt.Println("Passphrase is set.")
			} else {
				fmt.Println("No passphrase yet. Create one with: envault passphrase create")
			}
			return nil
		},
	}
}

func newPassphraseCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the vault passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ensureLogin(ctx, client); err != nil {
				return err
			}
			pass, err := promptSecret("New passphrase")
			if err != nil {
				return err
			}
			confirm, err := promptSecret("Confirm passphrase")
			if err != nil {
				return err
			}
			if pass == "" {
				return api.Validation("passphrase cannot be empty")
			}
			if pass != confirm {
				return api.Validation("passphrases do not match")
			}
			if err := client.CreatePassphrase(ctx, pass); err != nil {
				return err
			}
			fmt.Println("Passphrase created successfully.")
			return nil
		},
	}
}

func newPassphraseChangeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "change",
		Short: "Change the vault passphrase (re-encrypts every project)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ensureLogin(ctx, client); err != nil {
				return err
			}
			oldPass, err := promptSecret("Old passphrase")
			if err != nil {
				return err
			}
			newPass, err := promptSecret("New passphrase")
			if err != nil {
				return err
			}
			confirm, err := promptSecret("Confirm passphrase")
			if err != nil {
				return err
			}
			if oldPass == "" || newPass == "" {
				return api.Validation("passphrase cannot be empty")
			}
			if newPass != confirm {
				return api.Validation("passphrases do not match")
			}
			if err := client.ChangePassphrase(ctx, oldPass, newPass); err != nil {
				return err
			}
			fmt.Println("Passphrase changed successfully.")
			return nil
		},
	}
}
