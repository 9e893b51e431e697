// Package main provides the entry point for the sentinelscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sentinelscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinelscan",
		Short: "Multi-protocol network probe engine",
		Long: `sentinelscan probes a target host across a port range using
TCP connect scans, HTTP endpoint probes, and TLS certificate inspection.

Probe timing is governed by a pacing policy (stealth, normal,
aggressive, or none); large unpaced scans are automatically slowed
down to a minimal rate.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewExportsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
