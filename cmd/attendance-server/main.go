package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "attendance-server",
	Short: "RFID attendance scan validation service",
	// Running without a subcommand serves.
	RunE:          func(cmd *cobra.Command, args []string) error { return serveCmd.RunE(cmd, args) },
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (env ATTENDANCE_* overrides it)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "attendance-server:", err)
		os.Exit(1)
	}
}
