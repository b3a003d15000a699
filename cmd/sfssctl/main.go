package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/sfss/cmd/sfssctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sfssctl",
		Short: "Operator tools for the secure file sharing service",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.SweepCmd())
	rootCmd.AddCommand(cmd.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
