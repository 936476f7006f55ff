package cli

import (
	"fmt"

	"envault-cli/internal/vault"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects [filter]",
		Short: "List projects in the vault, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := ensureLogin(ctx, client); err != nil {
				return err
			}
			listing, err := client.Projects(ctx)
			if err != nil {
				return err
			}
			cache := vault.NewProjectCache()
			cache.Set(listing)
			projects := cache.Items()
			if len(args) == 1 {
				projects = cache.Filter(args[0])
			}
			if len(projects) == 0 {
				fmt.Println("No projects.")
				return nil
			}
			for _, p := range projects {
				line := p.Name
				if p.LastModified != "" {
					line += "\t" + p.LastModified
				}
				if p.Description != "" {
					line += "\t" + p.Description
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := app.client()
			if err != nil {
				return err
			}
			if err := client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("%s is healthy\n", client.BaseURL())
			return nil
		},
	}
}
