package cli

import (
	"fmt"
	"os"

	"envault-cli/internal/vault"

	"github.com/spf13/cobra"
)

func newDownloadCmd(app *App) *cobra.Command {
	var passphrase, output string
	cmd := &cobra.Command{
		Use:   "download <project>",
		Short: "Download a project's decrypted env file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			client, _, err := app.client()
			if err != nil {
				return err
			}
			pass, err := passphraseArg(passphrase)
			if err != nil {
				return err
			}
			data, err := client.CLIDownload(cmd.Context(), name, pass)
			if err != nil {
				return err
			}
			if output == "" {
				output = name + ".env"
			}
			if output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Vault passphrase (prompted when omitted)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <project>.env, '-' for stdout)")
	return cmd
}

func newUploadCmd(app *App) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "upload <project> <file>",
		Short: "Create a project from an env file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			client, _, err := app.client()
			if err != nil {
				return err
			}
			st, err := os.Stat(path)
			if err != nil {
				return err
			}
			if st.Size() > vault.MaxUploadBytes {
				return vault.ErrFileTooLarge
			}
			pass, err := passphraseArg(passphrase)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := client.CLIUpload(cmd.Context(), name, pass, st.Name(), f); err != nil {
				return err
			}
			fmt.Printf("Uploaded %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Vault passphrase (prompted when omitted)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project from the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			client, _, err := app.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ensureLogin(ctx, client); err != nil {
				return err
			}
			pass, err := passphraseArg(passphrase)
			if err != nil {
				return err
			}
			// The passphrase is the confirmation gate; there is no extra
			// yes/no prompt.
			if err := client.Delete(ctx, name, pass); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Vault passphrase (prompted when omitted)")
	return cmd
}
