package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/placemap/internal/schema"
)

func newBootstrapCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the categories, locations and import_logs tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			if err := schema.Apply(cmd.Context(), b.exec); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return err
		},
	}
}
