package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/placemap/internal/core"
)

func newLogsCmd(connect connectFunc) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent import log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			entries, err := core.NewService(b.store, b.opts).ListImportLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", core.DefaultImportLogLimit, "Maximum entries to show")
	return cmd
}
