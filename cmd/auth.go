package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the model service credential",
	}

	cmd.AddCommand(newAuthSetKeyCmd(app), newAuthClearCmd(app))

	return cmd
}

func newAuthSetKeyCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store the API key used for model calls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.secretStore.Set(cmd.Context(), apiKeySecret, value); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "stored API key")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "API key value")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newAuthClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.secretStore.Delete(cmd.Context(), apiKeySecret)
		},
	}
}
