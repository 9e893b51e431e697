package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sentinelscan/sentinelscan/internal/config"
	"github.com/sentinelscan/sentinelscan/internal/export"
)

// NewExportsCmd creates the exports command with its list/clean
// subcommands.
func NewExportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "Manage exported scan results",
		Long: `Exports manages the scan result files written by "scan --export".
They live in the XDG data directory (~/.local/share/sentinelscan/exports
on Linux).`,
	}

	cmd.AddCommand(newExportsListCmd())
	cmd.AddCommand(newExportsCleanCmd())

	return cmd
}

// newExportsListCmd creates the exports list subcommand.
func newExportsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exported scan results, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := export.OpenIndex(config.ExportDir())
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			entries, err := idx.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no exports found")
				return nil
			}

			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-4s  %s  [%s]\n",
					entry.CreatedAt.Format("2006-01-02 15:04:05"),
					entry.Format, entry.Filename, entry.Host)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d export(s) in %s\n", len(entries), config.ExportDir())
			return nil
		},
	}
}

// newExportsCleanCmd creates the exports clean subcommand.
func newExportsCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete all exported scan results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := export.OpenIndex(config.ExportDir())
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			exporter := export.NewExporter(config.ExportDir(),
				export.WithIndex(idx),
				export.WithLogger(slog.Default()),
			)

			deleted, err := exporter.Clean(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d export(s)\n", deleted)
			return nil
		},
	}
}
