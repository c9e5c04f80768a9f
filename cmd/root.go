package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/oilcall_backend/cmd/http"
	systemcmd "github.com/Alijeyrad/oilcall_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "oilcall",
	Short: "OilCall scheduling backend for mobile vehicle service.",
	Long: `OilCall books on-site vehicle service appointments. Customers pick a date
and slot from the technicians' published availability; technicians manage
their schedule, time clock and jobs; managers oversee bookings and staff.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
