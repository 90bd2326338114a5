package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "itsm-service",
		Short:        "ITSM console service",
		Long:         `Ticket lifecycle and SLA-compliance service with a REST API, a scheduled SLA evaluator and migration tools.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSLACheckCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
