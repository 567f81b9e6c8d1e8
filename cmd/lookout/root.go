package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "lookout",
		Short: "Cloud instance inventory and watched metrics",
		Long: `Lookout - Cloud Instance Inventory Engine

Lookout keeps an inventory of compute and database instances across every
region of your registered cloud accounts. Mark the instances you care
about as watched and pull their CloudWatch series through one endpoint,
merged across regions and ordered in time.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Lookout {{.Version}}
`)
}
