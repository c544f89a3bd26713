package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// validateCmd loads and validates a scenario without running it.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file for errors",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := scenarioFromFlags()
		if err != nil {
			logrus.Fatalf("Could not load scenario: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scenario %q is valid: %d locations, %d vehicles, %d days\n",
			cfg.Area.Name, cfg.Area.NumLocations(), cfg.FleetOperator.NumVehicles, cfg.Sim.RuntimeDays)
	},
}
