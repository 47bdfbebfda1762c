package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/placemap/internal/core"
)

// errRowsFailed makes the command exit non-zero after printing the report.
var errRowsFailed = errors.New("some rows failed validation")

func newImportCmd(connect connectFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a .csv or .xlsx file",
	}
	cmd.AddCommand(newImportKindCmd(connect, core.KindCategory, "categories", nil))
	cmd.AddCommand(newImportKindCmd(connect, core.KindPlace, "places", []string{"listings"}))
	return cmd
}

func newImportKindCmd(connect connectFunc, kind core.Kind, use string, aliases []string) *cobra.Command {
	var (
		name   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:     use + " <file>",
		Aliases: aliases,
		Short:   fmt.Sprintf("Import %s from a .csv or .xlsx file", use),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("%w: %v", core.ErrMissingFile, err)
			}
			if name == "" {
				name = filepath.Base(path)
			}

			b, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			service := core.NewService(b.store, b.opts)
			report, err := service.Import(cmd.Context(), kind, name, data)
			if report != nil {
				if werr := writeJSON(cmd.OutOrStdout(), report); werr != nil {
					return werr
				}
			}
			if err != nil {
				if !core.IsUserFacing(err) {
					return err
				}
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}
			if strict && len(report.Errors) > 0 {
				return fmt.Errorf("%w: %d of %d", errRowsFailed,
					len(report.Errors), len(report.Errors)+report.Inserted+report.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "File name recorded in the import log (default: base name of <file>)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any row fails validation")
	return cmd
}
