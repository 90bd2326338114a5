package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newSLACheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sla-check",
		Short: "Evaluate SLA compliance once and print the alerts as JSON",
		RunE:  runSLACheck,
	}
}

func runSLACheck(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.services.Alerts.EvaluateAll(cmd.Context())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
